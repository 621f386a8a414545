// Package common contains shared constants and sentinel errors used across
// the authentication service layers.
package common

// RefreshTokenCookieName is the name of the HTTP-only cookie that carries
// the refresh token between the browser and the service.
const RefreshTokenCookieName = "refreshToken"

// EnvironmentProduction is the Environment value that turns on Secure
// cookies and HSTS.
const EnvironmentProduction = "production"
