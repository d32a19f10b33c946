package audit

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

var (
	bucketEvents = []byte("score_events")
	bucketMeta   = []byte("audit_meta")
	keyCount     = []byte("event_count")
)

// Store persists score events in a bbolt file. Keys are the event timestamp in
// nanoseconds followed by a bucket sequence number, so iteration is chronological.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens (or creates) the audit database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEvents, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one event and trims the oldest events beyond maxEvents.
func (s *Store) Append(event model.ScoreEvent, maxEvents int) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal score event: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(eventKey(event.Timestamp, seq), data); err != nil {
			return err
		}

		meta := tx.Bucket(bucketMeta)
		count, err := trim(b, readCount(meta)+1, maxEvents)
		if err != nil {
			return err
		}
		return writeCount(meta, count)
	})
}

// Since returns events with a timestamp at or after from, oldest first.
func (s *Store) Since(from time.Time) ([]model.ScoreEvent, error) {
	events := make([]model.ScoreEvent, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(eventKey(from, 0)); k != nil; k, v = c.Next() {
			var event model.ScoreEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return fmt.Errorf("failed to unmarshal score event: %w", err)
			}
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

// Count returns the number of stored events.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = int(readCount(tx.Bucket(bucketMeta)))
		return nil
	})
	return count, err
}

// trim deletes the oldest events until at most maxEvents remain and returns the new count.
func trim(b *bbolt.Bucket, count uint64, maxEvents int) (uint64, error) {
	if maxEvents <= 0 {
		return count, nil
	}

	c := b.Cursor()
	for k, _ := c.First(); k != nil && count > uint64(maxEvents); k, _ = c.First() {
		if err := c.Delete(); err != nil {
			return count, err
		}
		count--
	}
	return count, nil
}

func readCount(meta *bbolt.Bucket) uint64 {
	if v := meta.Get(keyCount); len(v) == 8 {
		return binary.BigEndian.Uint64(v)
	}
	return 0
}

func writeCount(meta *bbolt.Bucket, count uint64) error {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, count)
	return meta.Put(keyCount, v)
}

func eventKey(ts time.Time, seq uint64) []byte {
	key := make([]byte, 16)
	nanos := ts.UnixNano()
	if nanos < 0 {
		nanos = 0
	}
	binary.BigEndian.PutUint64(key[:8], uint64(nanos))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}
