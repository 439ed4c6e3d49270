// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// File is one multipart file part.
type File struct {
	// Field is the form field name, e.g. "photo".
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

/*
Upload sends file (and optional plain fields) as multipart/form-data with POST.

Results are normalised exactly like [Client.Request].

Parameters:
  - ctx: context.Context
  - path: string
  - file: File
  - fields: map[string]string (may be nil)

Returns:
  - Outcome
*/
func (client *Client) Upload(ctx context.Context, path string, file File, fields map[string]string) Outcome {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	if err := writeMultipart(writer, file, fields); err != nil {
		client.logger.ErrorContext(ctx, "api_upload_encode_failed", slog.String("path", path), slog.Any("error", err))
		return client.finish(ctx, http.MethodPost, path, time.Now(), failure(apperr.KindUnknown, 0, ""))
	}

	return client.send(ctx, http.MethodPost, path, &buffer, writer.FormDataContentType())
}

func writeMultipart(writer *multipart.Writer, file File, fields map[string]string) error {
	if file.Content == nil {
		return errors.New("file has no content")
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.FileName)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	return writer.Close()
}
