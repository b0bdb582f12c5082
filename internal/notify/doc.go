// Package notify delivers signal messages to external channels.
//
// Delivery is fire-and-forget. The Dispatcher accepts messages without
// blocking, queues them in a bounded buffer, and hands them to a Sink from
// a small pool of workers. Sink failures are logged and counted but never
// retried and never reported back to the caller.
//
// Sinks:
//   - TelegramSink: Bot API sendMessage, one request per recipient
//   - RedisSink: PUBLISH of a JSON envelope on a channel
//   - KafkaSink: one JSON envelope message per notification
//   - LogSink: writes messages to the logger
//   - Multi: fans a message out to several sinks
package notify
