package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Fixed content of the document email.
const (
	Subject = "Your requested documents"
	Body    = "Hello,\r\n\r\nPlease find attached the documents you requested.\r\n\r\nBest regards\r\n"
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// loadAttachments reads the configured files fresh from disk. Any missing file
// fails the whole send.
func (m *Mailer) loadAttachments() ([]Attachment, error) {
	if len(m.cfg.AttachmentFiles) == 0 {
		return nil, fmt.Errorf("%w: no attachments configured", ErrNotConfigured)
	}

	attachments := make([]Attachment, 0, len(m.cfg.AttachmentFiles))
	for _, name := range m.cfg.AttachmentFiles {
		path := filepath.Join(m.cfg.AttachmentDir, filepath.Base(name))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", name, err)
		}
		attachments = append(attachments, Attachment{
			Filename:    filepath.Base(name),
			ContentType: mimetype.Detect(data).String(),
			Data:        data,
		})
	}
	return attachments, nil
}

// formatMessage renders msg as a multipart/mixed RFC 5322 message.
func (m *Mailer) formatMessage(msg Message) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.ContentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename}))

		attPart, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(attPart, att.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", m.fromHeader())
	fmt.Fprintf(&out, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/mixed; boundary=%s\r\n", writer.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func (m *Mailer) fromHeader() string {
	if m.cfg.FromName == "" {
		return m.from()
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.from())
}

// writeBase64Lines writes data base64-encoded in 76-character lines per RFC 2045.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for i := 0; i < len(encoded); i += 76 {
		end := min(i+76, len(encoded))
		if _, err := w.Write([]byte(encoded[i:end] + "\r\n")); err != nil {
			return err
		}
	}
	return nil
}
