package service

// optimistic applies a local state change ahead of backend confirmation and
// reverts to the snapshot when the commit fails.
func optimistic[S any](state *S, apply func(S) S, commit func() error) error {
	snapshot := *state
	*state = apply(snapshot)
	if err := commit(); err != nil {
		*state = snapshot
		return err
	}
	return nil
}
