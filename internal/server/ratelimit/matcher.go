package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for routes that are never rate limited.
var unlimited = &EndpointConfig{Name: "health", Method: http.MethodGet, Paths: []string{"/health"}}

// MatchEndpoint returns the configuration whose method and one of whose paths
// match the request, or nil when the default limit applies. A trailing slash
// on the request path is ignored, so "/generate/" counts against "/generate".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if method == http.MethodGet && path == "/health" {
		return unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		for _, p := range config.Paths {
			if p == path {
				return config
			}
		}
	}
	return nil
}

// bucketKey names the bucket a request draws from. Paths grouped under one
// configuration share a bucket per client.
func bucketKey(clientID, path, method string, config *EndpointConfig) string {
	if config != nil && config.Name != "" {
		return clientID + ":" + config.Name
	}
	return clientID + ":" + path + ":" + method
}
