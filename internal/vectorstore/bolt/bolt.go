// Package bolt persists rate embeddings in a bbolt file so the semantic
// index survives restarts. One bucket holds JSON-encoded items keyed by
// rate code; a second holds the dimension.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"estimator/internal/domain"
	"estimator/internal/vectorstore"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// Storage is a VectorStore backed by bbolt.
type Storage struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt file at path.
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// Init records the dimension. A different dimension from a previous run
// drops the stored vectors.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyDimension); v != nil && string(v) != strconv.Itoa(dimension) {
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucketVectors); err != nil {
				return err
			}
		}
		return meta.Put(keyDimension, []byte(strconv.Itoa(dimension)))
	})
}

// Dimension returns the stored dimension, zero before Init.
func (s *Storage) Dimension() (int, error) {
	var dim int
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyDimension)
		if v == nil {
			return nil
		}
		var err error
		dim, err = strconv.Atoi(string(v))
		return err
	})
	return dim, err
}

func (s *Storage) Upsert(ctx context.Context, items []domain.VectorItem) error {
	dim, err := s.Dimension()
	if err != nil {
		return err
	}
	encoded := make([][]byte, len(items))
	for i, it := range items {
		if len(it.Vector) != dim {
			return vectorstore.ErrDimensionMismatch
		}
		if encoded[i], err = json.Marshal(it); err != nil {
			return fmt.Errorf("marshal %s: %w", it.RateCode, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i, it := range items {
			if err := b.Put([]byte(it.RateCode), encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int, f domain.Filters) ([]domain.VectorHit, error) {
	var hits []domain.VectorHit
	err := s.db.View(func(tx *bolt.Tx) error {
		n := 0
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			n++
			if n%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			// v is only valid inside the transaction; Unmarshal copies what it keeps.
			var it domain.VectorItem
			if err := json.Unmarshal(v, &it); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			if !it.Matches(f) {
				return nil
			}
			hits = append(hits, domain.VectorHit{RateCode: it.RateCode, Distance: vectorstore.CosineDistance(it.Vector, vector)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(hits, vectorstore.CompareHits)
	return hits[:min(vectorstore.TopK(topK), len(hits))], nil
}

func (s *Storage) Clear(context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketVectors)
		return err
	})
}

// Len returns the number of stored vectors.
func (s *Storage) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketVectors).Stats().KeyN
		return nil
	})
	return n, err
}

// Count is Len for callers that hold a context.
func (s *Storage) Count(context.Context) (int, error) { return s.Len() }
