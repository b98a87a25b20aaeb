package sqlstore

import "github.com/sreenjoy/tez-social-sub001/core"

var (
	_ core.SessionStore           = (*SessionStore)(nil)
	_ core.ConnectionStore        = (*ConnectionStore)(nil)
	_ core.ConnectionStore        = (*CachedConnectionStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
