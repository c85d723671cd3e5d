package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// The env* helpers read optional variables. Unset or unparsable values
// fall back to the default; required values go through must().

func envStr(key, def string) string {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        return v
    }
    return def
}

// envBool accepts strconv.ParseBool spellings plus yes/no and on/off.
func envBool(key string, def bool) bool {
    v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
    switch v {
    case "":
        return def
    case "yes", "on":
        return true
    case "no", "off":
        return false
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        return def
    }
    return b
}

func envInt(key string, def int) int {
    n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
    if err != nil {
        return def
    }
    return n
}

func envDur(key string, def time.Duration) time.Duration {
    d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
    if err != nil {
        return def
    }
    return d
}
