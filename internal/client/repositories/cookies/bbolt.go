package cookies

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var rootBucket = []byte("cookies")

// BoltStore implements Store on a bbolt database. Each domain is a nested
// bucket under "cookies", keyed by cookie name.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// OpenBoltStore opens (or creates) the bbolt file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cookie store: %w", err)
	}
	return NewBoltStore(db), nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) PutAll(ctx context.Context, domain string, cookies []*Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if domain == "" {
		return ErrEmptyDomain
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(rootBucket)
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists([]byte(domain))
		if err != nil {
			return err
		}
		for _, c := range cookies {
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encoding cookie %s: %w", c.Name, err)
			}
			if err := b.Put([]byte(c.Name), data); err != nil {
				return fmt.Errorf("writing cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) List(ctx context.Context, domain string) ([]*Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*Cookie
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := domainBucket(tx, domain)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var c Cookie
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			out = append(out, &c)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Clear(ctx context.Context, domain string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(rootBucket)
		if root == nil || root.Bucket([]byte(domain)) == nil {
			return nil
		}
		return root.DeleteBucket([]byte(domain))
	})
}

func domainBucket(tx *bbolt.Tx, domain string) *bbolt.Bucket {
	root := tx.Bucket(rootBucket)
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(domain))
}
