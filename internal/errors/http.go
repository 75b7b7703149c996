package appErrors

import "net/http"

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodePreconditionFailed, CodeConfigurationMissing, CodeInvalidRecipient, CodeBadRequest, CodeCredentialsMissing:
		return http.StatusBadRequest
	case CodeDonorNotFound:
		return http.StatusNotFound
	case CodeJobInProgress:
		return http.StatusConflict
	case CodeChannelRejected, CodeUnexpectedChannel:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
