// Package tgui provides small Telegram text helpers:
//   - HTML builders safe for ParseMode="HTML" (auto escaping)
//   - Rune-aware truncation for budgets measured in characters
package tgui
