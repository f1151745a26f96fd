// Package tools holds helpers shared by the capability groups under
// internal/tools: argument binding and validation, the disabled-cluster
// guard, result helpers and the instrumentation middleware applied to every
// registered capability.
//
// The groups themselves live in subpackages:
//
//   - kubernetes: core cluster primitives (pods, services, logs, exec, policy)
//   - hlf: Hyperledger Fabric custom resources and the operator
//   - utility: YAML helpers, usage summaries and config generation
package tools
