//go:build integration

package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceFlow(t *testing.T) {
	phone := uniquePhone()
	createResp := makeRequest(http.MethodPost, "/api/v1/devices", map[string]interface{}{
		"device_name":  uniqueName("Living Room Monitor"),
		"phone_number": phone,
	}, authToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode, string(createResp.Body))
	assert.Equal(t, true, createResp.Data["is_active"])
	deviceID := createResp.GetString("id")

	dupResp := makeRequest(http.MethodPost, "/api/v1/devices", map[string]interface{}{
		"device_name":  "Duplicate",
		"phone_number": phone,
	}, authToken)
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)

	updateResp := makeRequest(http.MethodPut, "/api/v1/devices/"+deviceID, map[string]interface{}{
		"is_active":                  false,
		"inactivity_threshold_hours": 6,
	}, authToken)
	require.Equal(t, http.StatusOK, updateResp.StatusCode, string(updateResp.Body))
	assert.Equal(t, false, updateResp.Data["is_active"])

	deleteResp := makeRequest(http.MethodDelete, "/api/v1/devices/"+deviceID, nil, authToken)
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)
}

func TestSettingsFlow(t *testing.T) {
	resp := makeRequest(http.MethodPut, "/api/v1/me", map[string]interface{}{
		"notification_method": "sms",
	}, authToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	assert.Equal(t, "sms", resp.Data["notification_method"])

	getResp := makeRequest(http.MethodGet, "/api/v1/me", nil, authToken)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, "sms", getResp.Data["notification_method"])
	assert.Nil(t, getResp.Data["password_hash"])
}
