package hlf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/utils/ptr"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/tools/toolstest"
)

func object(kind, ns, name string, spec, status map[string]any) unstructured.Unstructured {
	obj := map[string]any{
		"apiVersion": k8s.FabricGroup + "/" + k8s.FabricVersion,
		"kind":       kind,
		"metadata": map[string]any{
			"name":              name,
			"namespace":         ns,
			"creationTimestamp": "2024-03-01T12:00:00Z",
		},
	}
	if spec != nil {
		obj["spec"] = spec
	}
	if status != nil {
		obj["status"] = status
	}
	return unstructured.Unstructured{Object: obj}
}

func fixture() *toolstest.Client {
	c := toolstest.New()
	c.Objects[k8s.FabricCAs] = []unstructured.Unstructured{
		object("FabricCA", "default", "org1-ca",
			map[string]any{"version": "1.5.7", "ca": map[string]any{"name": "ca"}, "tlsca": map[string]any{"name": "tlsca"}},
			map[string]any{"status": "RUNNING", "url": "https://org1-ca:7054"}),
		object("FabricCA", "default", "pending-ca", nil, nil),
	}
	c.Objects[k8s.FabricPeers] = []unstructured.Unstructured{
		object("FabricPeer", "default", "org1-peer0",
			map[string]any{"mspID": "Org1MSP", "stateDb": "couchdb", "version": "2.5.4"},
			map[string]any{"status": "RUNNING", "url": "peer0.org1:7051"}),
	}
	c.Objects[k8s.FabricMainChannels] = []unstructured.Unstructured{
		object("FabricMainChannel", "default", "demo",
			map[string]any{
				"name":                      "demo",
				"adminOrdererOrganizations": []any{map[string]any{"mspID": "OrdererMSP"}},
				"adminPeerOrganizations":    []any{map[string]any{"mspID": "Org1MSP"}, map[string]any{"mspID": "Org2MSP"}},
			}, nil),
	}
	c.Objects[k8s.FabricFollowerChannels] = []unstructured.Unstructured{
		object("FabricFollowerChannel", "default", "demo-org1",
			map[string]any{
				"name":        "demo",
				"mspId":       "Org1MSP",
				"anchorPeers": []any{map[string]any{"host": "peer0", "port": int64(7051)}},
				"peersToJoin": []any{map[string]any{"name": "org1-peer0", "namespace": "default"}},
			}, nil),
	}
	return c
}

func TestCapabilities_Catalogue(t *testing.T) {
	var names []string
	for _, c := range New(toolstest.New()).Capabilities() {
		names = append(names, c.Name())
		assert.Equal(t, "hlf", c.Group.String())
	}
	assert.Equal(t, []string{
		"hlf-list-cas",
		"hlf-list-peers",
		"hlf-list-orderers",
		"hlf-list-ordnodes",
		"hlf-list-main-channels",
		"hlf-list-follower-channels",
		"hlf-list-chaincode",
		"hlf-get-resource",
		"hlf-check-operator",
	}, names)
}

func TestListCAs_ProjectionAndDefaults(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	var out struct {
		Namespace string           `json:"namespace"`
		Count     int              `json:"count"`
		CAs       []map[string]any `json:"cas"`
	}
	toolstest.Decode(t, e, "hlf-list-cas", nil, &out)

	assert.Equal(t, "default", out.Namespace)
	require.Equal(t, 2, out.Count)
	assert.Equal(t, map[string]any{
		"name":              "org1-ca",
		"namespace":         "default",
		"status":            "RUNNING",
		"url":               "https://org1-ca:7054",
		"caName":            "ca",
		"tlsCAName":         "tlsca",
		"version":           "1.5.7",
		"creationTimestamp": "2024-03-01T12:00:00Z",
		"labels":            map[string]any{},
	}, out.CAs[0])

	pending := out.CAs[1]
	assert.Equal(t, "Unknown", pending["status"])
	assert.Equal(t, "N/A", pending["url"])
	assert.Equal(t, "N/A", pending["caName"])
	assert.Equal(t, "Unknown", pending["version"])
}

func TestListPeers(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	var out struct {
		Peers []map[string]any `json:"peers"`
	}
	toolstest.Decode(t, e, "hlf-list-peers", nil, &out)

	require.Len(t, out.Peers, 1)
	assert.Equal(t, "Org1MSP", out.Peers[0]["mspID"])
	assert.Equal(t, "couchdb", out.Peers[0]["stateDB"])
	assert.Equal(t, "peer0.org1:7051", out.Peers[0]["externalEndpoint"])
}

func TestListChannels(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	var mains struct {
		MainChannels []map[string]any `json:"mainChannels"`
	}
	toolstest.Decode(t, e, "hlf-list-main-channels", nil, &mains)
	require.Len(t, mains.MainChannels, 1)
	assert.Equal(t, []any{"OrdererMSP"}, mains.MainChannels[0]["adminOrdererOrgs"])
	assert.Equal(t, []any{"Org1MSP", "Org2MSP"}, mains.MainChannels[0]["adminPeerOrgs"])
	assert.Equal(t, "Unknown", mains.MainChannels[0]["status"])

	var followers struct {
		FollowerChannels []map[string]any `json:"followerChannels"`
	}
	toolstest.Decode(t, e, "hlf-list-follower-channels", nil, &followers)
	require.Len(t, followers.FollowerChannels, 1)
	assert.Equal(t, "Org1MSP", followers.FollowerChannels[0]["mspId"])
	assert.Equal(t, []any{"org1-peer0"}, followers.FollowerChannels[0]["peersToJoin"])
	assert.Len(t, followers.FollowerChannels[0]["anchorPeers"], 1)
}

func TestListEmptyNamespace(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	var out map[string]any
	toolstest.Decode(t, e, "hlf-list-orderers", map[string]any{"namespace": "other"}, &out)
	assert.Equal(t, "other", out["namespace"])
	assert.Equal(t, float64(0), out["count"])
	assert.Equal(t, []any{}, out["orderers"])
}

func TestGetResource(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	var out resourceDetail
	toolstest.Decode(t, e, "hlf-get-resource", map[string]any{"type": "fabricpeer", "name": "org1-peer0"}, &out)
	assert.Equal(t, "org1-peer0", out.Metadata.(map[string]any)["name"])
	assert.Equal(t, "Org1MSP", out.Spec.(map[string]any)["mspID"])

	toolstest.Decode(t, e, "hlf-get-resource", map[string]any{"type": "fabricmainchannels", "name": "demo"}, &out)
	assert.Equal(t, map[string]any{}, out.Status)
}

func TestGetResource_Validation(t *testing.T) {
	e := toolstest.Engine(New(fixture()))

	text := toolstest.Failure(t, e, "hlf-get-resource", map[string]any{"name": "x"})
	assert.Equal(t, `Error executing hlf-get-resource: missing required argument "type"`, text)

	text = toolstest.Failure(t, e, "hlf-get-resource", map[string]any{"type": "fabricconsole", "name": "x"})
	assert.Contains(t, text, `argument "type" must be one of [fabricca, fabricpeer,`)

	text = toolstest.Failure(t, e, "hlf-get-resource", map[string]any{"type": "fabricca", "name": "missing"})
	assert.Contains(t, text, `"missing" not found`)
}

func TestCheckOperator(t *testing.T) {
	labels := map[string]string{"app.kubernetes.io/name": "hlf-operator"}
	client := toolstest.New()
	client.Deployments = []appsv1.Deployment{{
		ObjectMeta: metav1.ObjectMeta{Name: "hlf-operator", Namespace: OperatorNamespace, Labels: labels},
		Spec:       appsv1.DeploymentSpec{Replicas: ptr.To[int32](1)},
		Status: appsv1.DeploymentStatus{
			ReadyReplicas: 1,
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
			},
		},
	}}
	client.Pods = []corev1.Pod{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "hlf-operator-abc", Namespace: OperatorNamespace, Labels: labels},
			Status: corev1.PodStatus{
				Phase:             corev1.PodRunning,
				ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
			},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: OperatorNamespace},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		},
	}
	e := toolstest.Engine(New(client))

	var out operatorStatus
	toolstest.Decode(t, e, "hlf-check-operator", nil, &out)

	assert.Equal(t, OperatorNamespace, out.Namespace)
	assert.True(t, out.OperatorRunning)
	assert.Equal(t, []operatorDeployment{{Name: "hlf-operator", Ready: "1/1", Status: "True"}}, out.Deployments)
	assert.Equal(t, []operatorPod{{Name: "hlf-operator-abc", Status: "Running", Ready: "1/1"}}, out.Pods)

	toolstest.Decode(t, e, "hlf-check-operator", map[string]any{"namespace": "elsewhere"}, &out)
	assert.False(t, out.OperatorRunning)
	assert.Empty(t, out.Deployments)
}

func TestDisabled(t *testing.T) {
	client := fixture()
	client.Conn.Disabled = true
	e := toolstest.Engine(New(client))

	for _, c := range New(client).Capabilities() {
		text := toolstest.Failure(t, e, c.Name(), map[string]any{"type": "fabricca", "name": "x"})
		assert.Contains(t, text, "disabled")
	}
	assert.Zero(t, client.ClusterCalls())
}
