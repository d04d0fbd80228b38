package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

// EncodeMultipart encodes upload as a multipart/form-data body for POST
// /files. Fields are written in the order storage, download_filename, folder
// (when set), then the file part. It returns the body and the Content-Type
// header value carrying the boundary.
func EncodeMultipart(upload *directus.FileUpload) ([]byte, string, error) {
	if upload == nil {
		return nil, "", directus.ErrUploadRequired
	}

	if upload.Filename == "" {
		return nil, "", directus.ErrFilenameRequired
	}

	storage := upload.Storage
	if storage == "" {
		storage = constants.DefaultFileStorage
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Content)
	}

	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	err := writer.SetBoundary(constants.MultipartBoundaryPrefix + uuid.NewString())
	if err != nil {
		return nil, "", fmt.Errorf("setting multipart boundary: %w", err)
	}

	fields := [][2]string{
		{"storage", storage},
		{"download_filename", upload.Filename},
	}
	if upload.Folder != "" {
		fields = append(fields, [2]string{"folder", upload.Folder})
	}

	for _, field := range fields {
		err = writer.WriteField(field[0], field[1])
		if err != nil {
			return nil, "", fmt.Errorf("writing multipart field %s: %w", field[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteFilename(upload.Filename)))
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "binary")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating multipart file part: %w", err)
	}

	_, err = part.Write(upload.Content)
	if err != nil {
		return nil, "", fmt.Errorf("writing multipart file part: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

// quoteFilename escapes a file name for a quoted Content-Disposition
// parameter. Control characters other than tab are dropped so the name cannot
// end the header line.
func quoteFilename(s string) string {
	var escaped strings.Builder

	for _, r := range s {
		switch {
		case r == '\t':
		case unicode.IsControl(r):
			continue
		case r == '\\' || r == '"':
			escaped.WriteByte('\\')
		}

		escaped.WriteRune(r)
	}

	return escaped.String()
}
