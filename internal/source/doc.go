// Package source is the registry of error families that may travel inside an
// error package.
//
// There are exactly three families, one per Source: Holo, User and App. A
// family builds errors whose display name is chosen at runtime, so an error
// reconstructed from the wire keeps the name it had on the sending side
// (InstanceNotRunningError, say) while still belonging to its family:
//
//	err := source.Holo.New("InstanceNotRunningError", "Holochain instance is not active yet", nil)
//	fmt.Println(err.Name())            // InstanceNotRunningError
//	fmt.Println(errors.Is(err, source.Holo)) // true
//	fmt.Println(errors.Is(err, source.User)) // false
//
// The family table is built at init and never written afterwards.
package source
