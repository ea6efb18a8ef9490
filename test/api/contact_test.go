//go:build integration

package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactFlow(t *testing.T) {
	profileID := createTestProfile(t, "")
	contactID := createTestContact(t, profileID, "email", "sms")

	listResp := makeRequest(http.MethodGet, "/api/v1/profiles/"+profileID+"/contacts", nil, authToken)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	assert.Len(t, listResp.List, 1)

	updateResp := makeRequest(http.MethodPut, "/api/v1/contacts/"+contactID, map[string]interface{}{
		"alert_methods": []string{"voice_call"},
	}, authToken)
	require.Equal(t, http.StatusOK, updateResp.StatusCode, string(updateResp.Body))
	assert.Equal(t, []interface{}{"voice_call"}, updateResp.Data["alert_methods"])

	deleteResp := makeRequest(http.MethodDelete, "/api/v1/contacts/"+contactID, nil, authToken)
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	getResp := makeRequest(http.MethodGet, "/api/v1/contacts/"+contactID, nil, authToken)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestContactRejectsUnknownMethod(t *testing.T) {
	profileID := createTestProfile(t, "")
	resp := makeRequest(http.MethodPost, "/api/v1/profiles/"+profileID+"/contacts", map[string]interface{}{
		"full_name":     "Pigeon Fancier",
		"phone":         "+15551230000",
		"alert_methods": []string{"pigeon"},
	}, authToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
