// Package logx configures gazettebot's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Runtime reconfiguration via Service.Apply
//
// Diagnostics never go to the Telegram channel; that channel only carries
// discovery results.
package logx
