package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// GetLogs reads a container log. Streaming is not offered; the request
// returns once the log (capped at MaxLogBytes) has been read.
func (c *ClusterClient) GetLogs(ctx context.Context, namespace, podName string, opts LogOptions) (_ string, err error) {
	ctx, done := c.observe(ctx, OperationLogs, "pods", namespace)
	defer func() { done(err) }()

	cs, err := c.typed()
	if err != nil {
		return "", err
	}

	logOpts := &corev1.PodLogOptions{
		Container: opts.Container,
		Previous:  opts.Previous,
		TailLines: opts.TailLines,
	}

	stream, err := cs.CoreV1().Pods(namespace).GetLogs(podName, logOpts).Stream(ctx)
	if err != nil {
		return "", toAPIError(fmt.Sprintf("get logs for pod %s/%s", namespace, podName), err)
	}
	defer stream.Close()

	data, err := io.ReadAll(io.LimitReader(stream, MaxLogBytes))
	if err != nil {
		return "", fmt.Errorf("read logs for pod %s/%s: %w", namespace, podName, err)
	}
	return string(data), nil
}

// Exec runs command in a pod container over SPDY. A non-zero exit status is
// reported in the result rather than as an error.
func (c *ClusterClient) Exec(ctx context.Context, namespace, podName, container string, command []string) (_ *ExecResult, err error) {
	ctx, done := c.observe(ctx, OperationExec, "pods", namespace)
	defer func() { done(err) }()

	if len(command) == 0 {
		return nil, errors.New("command must not be empty")
	}

	cs, err := c.typed()
	if err != nil {
		return nil, err
	}
	restCfg, err := c.conn.RESTConfig()
	if err != nil {
		return nil, err
	}

	execReq := cs.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(podName).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(restCfg, http.MethodPost, execReq.URL())
	if err != nil {
		return nil, fmt.Errorf("create executor: %w", err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	result := &ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		result.ExitCode = exitErr.ExitStatus()
		return result, nil
	}
	if err != nil {
		return nil, toAPIError(fmt.Sprintf("exec in pod %s/%s", namespace, podName), err)
	}
	return result, nil
}
