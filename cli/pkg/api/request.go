package api

import (
	"github.com/go-resty/resty/v2"
)

// withContent sets the message body on req: JSON for text only, multipart
// when files are attached
func withContent(req *resty.Request, text string, files Attachments) {
	if len(files) == 0 {
		req.SetBody(map[string]string{"text": text})
		return
	}
	if text != "" {
		req.SetFormData(map[string]string{"text": text})
	}
	for field, path := range files {
		req.SetFile(field, path)
	}
}

func checked(resp *resty.Response, err error) (*resty.Response, error) {
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return resp, nil
}
