package source

import "go.uber.org/zap"

// Option configures a Reader or Terminal.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	chunkSize int
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		chunkSize: 256,
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithChunkSize sets how many bytes the pump reads per call.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}
