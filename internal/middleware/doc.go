// Package middleware provides HTTP middleware for the asset explorer
// service:
//   - Request logging in W3C Extended Log Format
//   - Response compression (gzip)
//   - Prometheus request metrics keyed by route template
package middleware
