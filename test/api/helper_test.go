//go:build integration

package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// uniquePhone returns an E.164-looking number that no other profile uses.
func uniquePhone() string {
	return fmt.Sprintf("+1555%07d", time.Now().UnixNano()%10_000_000)
}

func createTestProfile(t *testing.T, devicePhone string) string {
	t.Helper()
	body := map[string]interface{}{
		"full_name":                  uniqueName("Test Profile"),
		"age":                        81,
		"address":                    "12 Elm St",
		"inactivity_threshold_hours": 12,
	}
	if devicePhone != "" {
		body["device_phone_number"] = devicePhone
	}
	resp := makeRequest(http.MethodPost, "/api/v1/profiles", body, authToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	id := resp.GetString("id")
	t.Cleanup(func() {
		makeRequest(http.MethodDelete, "/api/v1/profiles/"+id, nil, authToken)
	})
	return id
}

func createTestContact(t *testing.T, profileID string, methods ...string) string {
	t.Helper()
	resp := makeRequest(http.MethodPost, "/api/v1/profiles/"+profileID+"/contacts", map[string]interface{}{
		"full_name":     uniqueName("Test Contact"),
		"relationship":  "daughter",
		"email":         "contact@example.com",
		"phone":         "+15551230000",
		"alert_methods": methods,
		"is_primary":    true,
	}, authToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	return resp.GetString("id")
}
