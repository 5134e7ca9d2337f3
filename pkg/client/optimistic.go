package client

type snapshot struct {
	key     string
	val     any
	present bool
}

// runOptimistic is the single path for optimistic writes: snapshot the
// touched keys, apply the local mutation, run the network call, and restore
// the snapshots when the call fails. Every write goes through here so that
// rollback-on-failure holds uniformly instead of being a per-call-site
// concern.
func runOptimistic(c *QueryCache, keys []string, apply func(), call func() error) error {
	snaps := make([]snapshot, 0, len(keys))
	for _, k := range keys {
		v, ok := c.Get(k)
		snaps = append(snaps, snapshot{key: k, val: v, present: ok})
	}

	apply()

	if err := call(); err != nil {
		for _, s := range snaps {
			if s.present {
				c.Set(s.key, s.val)
			} else {
				c.Invalidate(s.key)
			}
		}
		return err
	}
	return nil
}
