package media

import "context"

// Asset is the remote reference returned by the store: a public URL and the
// storage key needed to delete the object later.
type Asset struct {
	URL string
	Key string
}

// Store is the remote asset store capability: upload a local file, delete a
// previously uploaded object by key.
type Store interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, key string) error
}
