package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putFails int
	putErr   error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putFails > 0 {
		m.putFails--
		return nil, errors.New("transient upload failure")
	}
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	ct := "image/jpeg"
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader(string(data))),
		ContentType: &ct,
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testStore(mock *mockS3Client) *Store {
	return &Store{
		cfg:    Config{Bucket: "semillita-media"},
		client: mock,
	}
}

func TestPutAndGet(t *testing.T) {
	mock := newMockS3()
	st := testStore(mock)

	key, err := st.Put(context.Background(), "photos", "image/jpeg", []byte("img-bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(key, "photos/") {
		t.Errorf("key = %q, want photos/ prefix", key)
	}

	data, contentType, err := st.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(data, []byte("img-bytes")) {
		t.Errorf("data = %q, want %q", data, "img-bytes")
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", contentType)
	}
}

func TestPutRetriesTransientFailure(t *testing.T) {
	mock := newMockS3()
	mock.putFails = 2
	st := testStore(mock)

	key, err := st.Put(context.Background(), "audio", "audio/webm", []byte("clip"))
	if err != nil {
		t.Fatalf("put after transient failures: %v", err)
	}
	if _, ok := mock.objects[key]; !ok {
		t.Error("expected object stored after retries")
	}
}

func TestPutUniqueKeys(t *testing.T) {
	mock := newMockS3()
	st := testStore(mock)

	k1, err := st.Put(context.Background(), "photos", "image/png", []byte("a"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	k2, err := st.Put(context.Background(), "photos", "image/png", []byte("b"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if k1 == k2 {
		t.Error("expected unique keys for separate uploads")
	}
}

func TestDelete(t *testing.T) {
	mock := newMockS3()
	st := testStore(mock)

	key, _ := st.Put(context.Background(), "photos", "image/png", []byte("x"))
	if err := st.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := mock.objects[key]; ok {
		t.Error("expected object removed")
	}
}

func TestDisabled(t *testing.T) {
	st := NewStore(Config{})
	if st.Enabled() {
		t.Error("expected disabled store without credentials")
	}
	if _, err := st.Put(context.Background(), "photos", "image/png", nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("put err = %v, want ErrDisabled", err)
	}
	if _, _, err := st.Get(context.Background(), "k"); !errors.Is(err, ErrDisabled) {
		t.Errorf("get err = %v, want ErrDisabled", err)
	}
}
