package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"graphichelper/internal/media/sniffer"
	"graphichelper/internal/storage"
)

// ErrUpload wraps any failure to persist the uploaded file before an
// operation runs. The operation is aborted; nothing is recorded.
var ErrUpload = errors.New("upload failed")

type originalStore interface {
	PutOriginal(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// UploadService validates an uploaded image, drops it into uniquely keyed
// temp storage, and pushes it to the object store.
type UploadService struct {
	temp  *storage.TempStore
	store originalStore
	log   zerolog.Logger
}

func NewUploadService(temp *storage.TempStore, store originalStore, log zerolog.Logger) *UploadService {
	return &UploadService{
		temp:  temp,
		store: store,
		log:   log,
	}
}

type StoredUpload struct {
	ObjectKey   string
	ContentType string
	SizeBytes   int64
}

// Store sniffs the upload (png/jpeg only), cross-checks the declared
// content type, writes the temp file, and uploads it as an original. The
// temp file is removed once the object store has the bytes.
func (s *UploadService) Store(ctx context.Context, file multipart.File, header *multipart.FileHeader) (StoredUpload, error) {
	if file == nil || header == nil {
		return StoredUpload{}, fmt.Errorf("%w: missing file payload", ErrUpload)
	}

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return StoredUpload{}, fmt.Errorf("%w: read head: %v", ErrUpload, err)
	}
	head = head[:n]

	result, err := sniffer.DetectHead(head)
	if err != nil {
		return StoredUpload{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header))
	if declared != "" && declared != result.MIME {
		return StoredUpload{}, fmt.Errorf("%w: declared %s, sniffed %s", ErrUpload, declared, result.MIME)
	}

	key, path, err := s.temp.Save(io.MultiReader(bytes.NewReader(head), file), header.Filename)
	if err != nil {
		return StoredUpload{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	f, err := os.Open(path)
	if err != nil {
		s.cleanup(key)
		return StoredUpload{}, fmt.Errorf("%w: reopen temp: %v", ErrUpload, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.cleanup(key)
		return StoredUpload{}, fmt.Errorf("%w: stat temp: %v", ErrUpload, err)
	}

	if err := s.store.PutOriginal(ctx, key, f, info.Size(), result.MIME); err != nil {
		s.cleanup(key)
		return StoredUpload{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	s.cleanup(key)

	return StoredUpload{
		ObjectKey:   key,
		ContentType: result.MIME,
		SizeBytes:   info.Size(),
	}, nil
}

func (s *UploadService) cleanup(key string) {
	if err := s.temp.Remove(key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("temp cleanup failed")
	}
}
