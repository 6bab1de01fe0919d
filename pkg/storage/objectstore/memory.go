package objectstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Client, used by tests and the "memory" provider.
type Memory struct {
	mu      sync.RWMutex
	base    string
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	meta Object
}

// NewMemory returns an empty in-memory store whose URLs are rooted at base.
func NewMemory(base string) *Memory {
	return &Memory{base: base, objects: map[string]memoryObject{}}
}

func (m *Memory) Put(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{
		data: data,
		meta: Object{
			Key:         key,
			Size:        int64(len(data)),
			ContentType: metadata[MetaContentType],
			Modified:    time.Now().UTC(),
		},
	}
	return nil
}

func (m *Memory) Open(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, Object{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.meta, nil
}

func (m *Memory) List(ctx context.Context) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Object, 0, len(m.objects))
	for _, obj := range m.objects {
		out = append(out, obj.meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return publicURL(m.base, key)
}

func (m *Memory) BaseURL() string {
	return m.base
}

func (m *Memory) Close() error {
	return nil
}

// Bytes returns a copy of the stored payload for key.
func (m *Memory) Bytes(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}
