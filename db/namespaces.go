package db

// Per-concern namespaces for the inheritance registry. Keys inside each
// namespace are account addresses.
var (
	NamespaceConfiguration    = []byte("cfg")
	NamespaceInactivityRecord = []byte("inact")
	NamespaceClaimedFlag      = []byte("claimed")
	NamespaceAuthorizedSigner = []byte("signer")
	Separator                 = []byte("|")
)

func PrependNamespace(namespace []byte, key []byte) []byte {
	if namespace != nil {
		return append(append(namespace, Separator...), key...)
	}
	return key
}

func ConvNilToBytes(byteArray []byte) []byte {
	if byteArray == nil {
		return []byte{}
	}
	return byteArray
}
