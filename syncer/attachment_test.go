package syncer

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/blake2b"

	"campus-chat/domain"
	"campus-chat/errors"
)

// Smallest valid PNG header, enough for content-type detection.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func writeTempFile(t *testing.T, name string, content []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestUploadAttachment_OversizedFileRejectedBeforeUpload(t *testing.T) {
	req := require.New(t)
	s, _, _, _ := newTestSynchronizer(t)
	s.maxFileSize = 16

	path := writeTempFile(t, "big.bin", bytes.Repeat([]byte{0xAB}, 64))

	// No Upload expectation on the API: the cap fires first.
	_, _, err := s.uploadAttachment(context.Background(), 42, path)
	req.ErrorIs(err, errors.ErrFileTooLarge)
}

func TestUploadAttachment_ClassifiesImagesByContent(t *testing.T) {
	req := require.New(t)
	s, _, _, api := newTestSynchronizer(t)

	// The extension lies, the bytes do not.
	path := writeTempFile(t, "photo.dat", pngHeader)

	api.EXPECT().Upload(gomock.Any(), domain.ConversationID(42), "photo.dat", gomock.Any(), int64(len(pngHeader))).
		Return(domain.FileDescriptor{Path: "/uploads/photo.dat", Name: "photo.dat", Size: int64(len(pngHeader))}, nil)

	fd, kind, err := s.uploadAttachment(context.Background(), 42, path)
	req.NoError(err)
	req.Equal(domain.KindImage, kind)
	req.Equal("/uploads/photo.dat", fd.Path)
}

func TestUploadAttachment_ChecksumCoversFileBytes(t *testing.T) {
	req := require.New(t)
	s, _, _, api := newTestSynchronizer(t)

	content := []byte("chapter 4 exercises")
	path := writeTempFile(t, "notes.txt", content)

	var uploaded []byte
	api.EXPECT().Upload(gomock.Any(), domain.ConversationID(42), "notes.txt", gomock.Any(), int64(len(content))).
		DoAndReturn(func(_ context.Context, _ domain.ConversationID, name string, body io.Reader, size int64) (domain.FileDescriptor, error) {
			var err error
			uploaded, err = io.ReadAll(body)
			require.NoError(t, err)
			return domain.FileDescriptor{Path: "/uploads/notes.txt", Name: name, Size: size}, nil
		})

	fd, kind, err := s.uploadAttachment(context.Background(), 42, path)
	req.NoError(err)
	req.Equal(domain.KindFile, kind)
	req.Equal(content, uploaded)

	sum := blake2b.Sum256(content)
	req.Equal(hex.EncodeToString(sum[:]), fd.Checksum)
}

func TestUploadAttachment_MissingFile(t *testing.T) {
	req := require.New(t)
	s, _, _, _ := newTestSynchronizer(t)

	_, _, err := s.uploadAttachment(context.Background(), 42, filepath.Join(t.TempDir(), "gone.txt"))
	req.Error(err)
}

func TestSend_AttachmentUploadFailureAbortsWithoutFallback(t *testing.T) {
	req := require.New(t)
	s, st, _, api := newTestSynchronizer(t)

	path := writeTempFile(t, "notes.txt", []byte("hello"))
	api.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.FileDescriptor{}, context.DeadlineExceeded)

	// Neither the push channel nor SendText may be touched.
	err := s.Send(context.Background(), SendRequest{Conversation: 42, FilePath: path})
	req.Error(err)
	req.Zero(st.Count(42))
}
