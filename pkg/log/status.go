package log

// Status classifies a run log line for the gateway operator.
type Status int

const (
	StatusInformation Status = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// StatusField is the structured field name carrying a Status.
const StatusField = "status"

var statusNames = map[Status]string{
	StatusInformation: "information",
	StatusSuccess:     "success",
	StatusWarning:     "warning",
	StatusError:       "error",
}

// String returns the string representation of the status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Report logs msg at the logrus level matching the status, tagged with the status field.
func Report(logger Logger, status Status, msg string) {
	l := logger.WithField(StatusField, status.String())

	switch status {
	case StatusWarning:
		l.Warn(msg)
	case StatusError:
		l.Error(msg)
	default:
		l.Info(msg)
	}
}
