package config

// ConfigInitError reports a config file that exists but cannot drive a board
// yet, such as one without a vault directory.
type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	return e.msg
}
