package solr

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/solrdex/internal/domain"
)

// Decoded is a classified, successful response.
type Decoded struct {
	Status int
	Header http.Header
	Body   map[string]any
}

// Classify materializes the body of resp and maps it to a decoded payload or a
// typed error. It may be called at most once per response.
func Classify(resp *RawResponse) (Decoded, error) {
	if resp == nil {
		return Decoded{}, domain.ErrUnknownStatus
	}
	if resp.classified {
		return Decoded{}, domain.ErrBodyConsumed
	}
	resp.classified = true

	data, err := resp.Body.Bytes()
	if err != nil {
		return Decoded{}, err
	}

	if resp.Status == 0 {
		if resp.Err != nil {
			return Decoded{}, fmt.Errorf("%w: %w", domain.ErrTransport, resp.Err)
		}
		return Decoded{}, domain.ErrUnknownStatus
	}

	body, parseErr := decodeObject(data)

	if resp.Status >= http.StatusBadRequest {
		return Decoded{}, domain.NewEngineError(resp.Status, resp.Reason, errorMessage(body))
	}
	if parseErr != nil {
		return Decoded{}, fmt.Errorf("%w: status %d: %w", domain.ErrMalformedResponse, resp.Status, parseErr)
	}

	return Decoded{Status: resp.Status, Header: resp.Header, Body: body}, nil
}

// Succeeded is the simple success contract: the body is materialized and the
// status must be 200. Only a failure to read the body is an error.
func Succeeded(resp *RawResponse) (bool, error) {
	if resp == nil {
		return false, nil
	}
	if _, err := resp.Body.Bytes(); err != nil {
		return false, err
	}
	return resp.Status == http.StatusOK, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a json object, got %T", v)
	}
	return obj, nil
}

// errorMessage extracts error.msg from an engine error body.
func errorMessage(body map[string]any) string {
	e, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := e["msg"].(string)
	return msg
}
