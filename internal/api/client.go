package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

func newHTTPClient() *fasthttp.Client {
	return &fasthttp.Client{
		MaxConnsPerHost:     100,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxIdleConnDuration: 1 * time.Minute,
	}
}

type header struct {
	name  string
	value string
}

func doRequest[T any](ctx context.Context, client *fasthttp.Client, url string, headers ...header) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	for _, h := range headers {
		req.Header.Set(h.name, h.value)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
