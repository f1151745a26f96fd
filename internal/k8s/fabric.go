package k8s

import "k8s.io/apimachinery/pkg/runtime/schema"

// API group and version of the custom resources served by the HLF operator.
const (
	FabricGroup   = "hlf.kungfusoftware.es"
	FabricVersion = "v1alpha1"
)

// Plural resource names of the HLF operator CRDs.
const (
	FabricCAs              = "fabriccas"
	FabricPeers            = "fabricpeers"
	FabricOrderers         = "fabricorderers"
	FabricOrdererNodes     = "fabricorderernodes"
	FabricMainChannels     = "fabricmainchannels"
	FabricFollowerChannels = "fabricfollowerchannels"
	FabricChaincodes       = "fabricchaincodes"
)

// FabricGVR returns the resource identifier for an HLF operator plural.
func FabricGVR(plural string) schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: FabricGroup, Version: FabricVersion, Resource: plural}
}
