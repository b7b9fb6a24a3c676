// Package webhook validates and invokes the external endpoints registered as
// assistant functions. The same path serves the pre-persist probe and the
// mid-stream function calls made by the relay.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/pkg/encrypt"
)

type Client struct {
	httpClient *http.Client
	aesKey     string
}

func NewClient(timeout time.Duration, aesKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		aesKey:     aesKey,
	}
}

// ValidateArgs checks caller-supplied args against the declared schema.
// Every declared parameter must be present, then every present value must
// match its declared type. Presence failures win over type failures.
func ValidateArgs(schema model.ParameterSchema, args map[string]interface{}) error {
	var missing []string
	for name := range schema.Query {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range schema.Header {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperr.Validation("Missing required parameters", missing...)
	}

	var mismatched []string
	check := func(declared map[string]model.TypeTag) {
		for name, tag := range declared {
			if !tag.Matches(args[name]) {
				mismatched = append(mismatched, fmt.Sprintf("%s: expected %s", name, tag))
			}
		}
	}
	check(schema.Query)
	check(schema.Header)
	if len(mismatched) > 0 {
		sort.Strings(mismatched)
		return apperr.Validation("Parameter type mismatch", mismatched...)
	}
	return nil
}

// Invoke calls the function's endpoint with args distributed into query
// parameters and headers per the declared schema. Returns the response
// status and a bounded slice of the body.
func (c *Client) Invoke(ctx context.Context, fn *model.Function, args map[string]interface{}) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, fn.Method, fn.Endpoint, nil)
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	for name := range fn.Parameters.Query {
		q.Set(name, stringify(args[name]))
	}
	req.URL.RawQuery = q.Encode()

	for name := range fn.Parameters.Header {
		req.Header.Set(name, stringify(args[name]))
	}

	if fn.AuthType == "bearer" && fn.AuthSecret != "" {
		secret, err := encrypt.Open(c.aesKey, fn.AuthSecret)
		if err != nil {
			return 0, "", fmt.Errorf("decrypt auth secret: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("call endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return resp.StatusCode, string(body), nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
