// Package notifications turns transfer events into desktop notifications and
// user interaction back into accept/decline resolutions.
//
// The facade wraps the platform notification service behind a small Backend
// interface (D-Bus org.freedesktop.Notifications on Linux, a stub elsewhere)
// and gracefully degrades when no backend is available: info notifications
// become no-ops and actionable prompts resolve immediately as declined, so a
// requesting peer is never left waiting on a surface that cannot render.
//
// Each actionable notification registers exactly one Pending request; the
// platform may deliver duplicate or overlapping terminal signals
// (action-then-close is normal, duplicated closes happen), so Pending resolves
// at most once regardless of how many signals arrive.
package notifications
