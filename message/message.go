package message

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	_ "github.com/emersion/go-message/charset"

	"github.com/devcybiko/junk-email/model"
)

// Parse decodes a raw RFC 822 message into a scan record: decoded From and
// Subject headers plus the text/plain and text/html part contents as the
// body. Attachments are skipped. Parse never fails; when the message cannot
// be read as MIME the whole payload becomes the body so address extraction
// still gets a chance at it.
func Parse(raw []byte) model.Record {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return model.Record{Body: string(raw)}
	}
	defer mr.Close()

	rec := model.Record{
		Sender:  headerText(mr.Header, "From"),
		Subject: headerText(mr.Header, "Subject"),
	}

	var parts []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") &&
			!strings.HasPrefix(contentType, "text/html") {
			continue
		}

		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		parts = append(parts, string(body))
	}

	rec.Body = strings.Join(parts, "\n")
	return rec
}

func headerText(h mail.Header, key string) string {
	text, err := h.Text(key)
	if err != nil {
		// decoding failed; the raw value is still worth scanning
		return h.Get(key)
	}
	return text
}
