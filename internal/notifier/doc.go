// Package notifier formats discovery results and delivers them to a chat.
//
// Messages longer than the channel limit are split into ordered chunks
// (newline-preferring, HTML-tag aware). Every chunk send is paced by a rate
// limiter and retried with jittered exponential backoff. A delivery counts
// as confirmed only when every chunk was accepted.
package notifier
