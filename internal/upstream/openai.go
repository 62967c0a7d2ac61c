package upstream

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// FromOpenAI turns go-openai's API/request errors into an *Error so that every
// backend reports upstream status the same way. Other errors pass through.
func FromOpenAI(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Provider:   "openai",
			StatusCode: apiErr.HTTPStatusCode,
			Status:     statusLine(apiErr.HTTPStatusCode),
			Body:       apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if body == "" && reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &Error{
			Provider:   "openai",
			StatusCode: reqErr.HTTPStatusCode,
			Status:     statusLine(reqErr.HTTPStatusCode),
			Body:       body,
		}
	}

	return err
}

func statusLine(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}
