// package httpcache stores successful read responses in a bbolt file so repeated
// lookups inside the TTL never reach the network.
package httpcache

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.etcd.io/bbolt"
)

const DefaultTTL = 5 * time.Minute

var bucketName = []byte("responses")

// Entry is a stored response.
type Entry struct {
	StoredAt   time.Time
	URL        string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fresh reports whether the entry is younger than ttl at now.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

func (e *Entry) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        e.Status,
		StatusCode:    e.StatusCode,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Storage persists entries by URL. Fetch returns nil, nil on a miss.
type Storage interface {
	Fetch(u *url.URL) (*Entry, error)
	Save(u *url.URL, res *http.Response) (*Entry, error)
	Purge() error
}

// BoltStorage is a [Storage] backed by a single bbolt bucket.
type BoltStorage struct {
	db *bbolt.DB
}

// Open opens (or creates) the cache file at path.
func Open(path string) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache %s: %w", path, err)
	}
	return NewBoltStorage(db), nil
}

func NewBoltStorage(db *bbolt.DB) *BoltStorage {
	return &BoltStorage{db: db}
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// key hashes the whole URL so tokens in the query are never stored in clear.
func key(u *url.URL) []byte {
	sum := sha1.Sum([]byte(u.String()))
	return []byte(u.Host + "/" + hex.EncodeToString(sum[:]))
}

func (s *BoltStorage) Fetch(u *url.URL) (*Entry, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		if v := b.Get(key(u)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}

	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &e, nil
}

func (s *BoltStorage) Save(u *url.URL, res *http.Response) (*Entry, error) {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	res.Body.Close()

	e := Entry{
		StoredAt:   time.Now(),
		URL:        u.Redacted(),
		Status:     res.Status,
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put(key(u), buf.Bytes())
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Purge removes every stored entry.
func (s *BoltStorage) Purge() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return nil
		}
		return tx.DeleteBucket(bucketName)
	})
}

// Transport serves GET requests from storage while fresh and records 200 responses.
// Other methods pass straight through.
type Transport struct {
	next    http.RoundTripper
	storage Storage
	ttl     time.Duration
	now     func() time.Time

	// OnLookup, when set, is told whether each GET was served from storage.
	OnLookup func(hit bool)
	// Cacheable, when set, must accept a 200 body before it is stored.
	Cacheable func(body []byte) bool
}

func NewTransport(next http.RoundTripper, storage Storage, ttl time.Duration) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Transport{next: next, storage: storage, ttl: ttl, now: time.Now}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}

	if e, err := t.storage.Fetch(req.URL); err == nil && e != nil && e.Fresh(t.now(), t.ttl) {
		t.lookup(true)
		return e.response(req), nil
	}
	t.lookup(false)

	res, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return res, nil
	}

	if t.Cacheable != nil {
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			return nil, err
		}
		res.Body = io.NopCloser(bytes.NewReader(body))
		if !t.Cacheable(body) {
			return res, nil
		}
	}

	e, err := t.storage.Save(req.URL, res)
	if err != nil {
		return nil, err
	}
	return e.response(req), nil
}

// Invalidate drops every stored response. Writers call it so later reads
// see the server's state.
func (t *Transport) Invalidate() error {
	return t.storage.Purge()
}

func (t *Transport) lookup(hit bool) {
	if t.OnLookup != nil {
		t.OnLookup(hit)
	}
}
