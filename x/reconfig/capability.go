package reconfig

// Capability proves the right to publish snapshots through a
// Publisher. The only instance is minted by PublishInitial and
// verified by pointer identity, so no other package can construct a
// value that the Publisher accepts.
type Capability struct {
	owner *Publisher
}
