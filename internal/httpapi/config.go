package httpapi

const defaultMaxBodyBytes = 64 << 10

// maxBodyBytes bounds JSON request bodies.
var maxBodyBytes int64 = defaultMaxBodyBytes

// SetMaxBodyBytes sets the JSON body limit. n <= 0 restores 64KiB.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// CORS is off unless SetCORSOptions enables it. Read by NewMux.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS for muxes built afterwards. The slices are copied.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
