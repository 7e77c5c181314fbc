// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFile struct {
	*bytes.Reader
}

func (f *memoryFile) Close() error { return nil }

func uploadFixture(name string, data []byte) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(data)),
		Header:   textproto.MIMEHeader{"Content-Type": {"image/png"}},
	}
	return &memoryFile{bytes.NewReader(data)}, header
}

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func TestLocalStorageServesLocalURLs(t *testing.T) {
	svc := NewLocalStorageService(testConfig())

	file, header := uploadFixture("foto.png", pngBytes)
	result, err := svc.UploadImage(file, header, svc.ImageUploadOptions("comercios"))
	require.NoError(t, err)

	assert.Contains(t, result.URL, "/uploads/comercios/")
	assert.Contains(t, result.Key, "comercios/")
	assert.EqualValues(t, len(pngBytes), result.Size)
}

func TestUploadRejectsNonImagePayload(t *testing.T) {
	svc := NewLocalStorageService(testConfig())

	file, header := uploadFixture("foto.png", []byte("<script>alert(1)</script>"))
	_, err := svc.UploadImage(file, header, svc.ImageUploadOptions("comercios"))
	assert.ErrorContains(t, err, "invalid image")
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	svc := NewLocalStorageService(testConfig())

	file, header := uploadFixture("foto.gif", pngBytes)
	_, err := svc.UploadImage(file, header, svc.ImageUploadOptions("ofertas"))
	assert.ErrorContains(t, err, "not allowed")
}
