package syncer

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/blake2b"

	"campus-chat/domain"
	"campus-chat/errors"
)

// Attachments are capped client-side before any bytes leave the
// machine.
const defaultMaxAttachmentSize = 10 << 20

// uploadAttachment enforces the size cap, classifies the file by its
// detected content type (not its extension), computes an integrity
// checksum and uploads the bytes. There is no fallback on this path.
func (s *Synchronizer) uploadAttachment(ctx context.Context, conv domain.ConversationID, path string) (*domain.FileDescriptor, domain.MessageKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if info.Size() > s.maxFileSize {
		return nil, "", fmt.Errorf("%w: %d bytes (limit %d)", errors.ErrFileTooLarge, info.Size(), s.maxFileSize)
	}

	// The cap keeps files small enough to hold in memory, which lets
	// one read serve detection, checksum and upload.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	kind := domain.KindFile
	if strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		kind = domain.KindImage
	}

	sum := blake2b.Sum256(data)
	name := filepath.Base(path)

	fd, err := s.api.Upload(ctx, conv, name, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("upload: %w", err)
	}
	fd.Checksum = hex.EncodeToString(sum[:])
	return &fd, kind, nil
}
