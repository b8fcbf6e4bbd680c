package app

import (
	"fmt"
	"net/http"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func errValidation(message string) *DomainError {
	return domainError(http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

func errUnauthenticated() *DomainError {
	return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
}

func errMissingEmail() *DomainError {
	return domainError(http.StatusBadRequest, "MISSING_EMAIL", "Profile has no resolvable primary email", nil)
}

func errSelfShareNotAllowed() *DomainError {
	return domainError(http.StatusBadRequest, "SELF_SHARE_NOT_ALLOWED", "A document cannot be shared with its owner", nil)
}

func errNotOwner() *DomainError {
	return domainError(http.StatusForbidden, "NOT_OWNER", "Only the document owner may do this", nil)
}

func errNotShared() *DomainError {
	return domainError(http.StatusForbidden, "NOT_SHARED", "This document has not been shared with you", nil)
}

func errInsufficientPermission() *DomainError {
	return domainError(http.StatusForbidden, "INSUFFICIENT_PERMISSION", "Your access level does not allow this", nil)
}

func errDocumentNotFound() *DomainError {
	return domainError(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found", nil)
}

func errVersionNotFound() *DomainError {
	return domainError(http.StatusNotFound, "VERSION_NOT_FOUND", "Version not found", nil)
}

func errTemplateNotFound() *DomainError {
	return domainError(http.StatusNotFound, "TEMPLATE_NOT_FOUND", "Template not found", nil)
}

func errUserNotFound() *DomainError {
	return domainError(http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
}

func errShareNotFound() *DomainError {
	return domainError(http.StatusNotFound, "SHARE_NOT_FOUND", "Share not found", nil)
}

func errShareLinkNotFound() *DomainError {
	return domainError(http.StatusNotFound, "SHARE_LINK_NOT_FOUND", "Share link not found or expired", nil)
}

func errGenerationFailed() *DomainError {
	return domainError(http.StatusInternalServerError, "GENERATION_FAILED", "Generation failed", nil)
}
