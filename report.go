package mt32

// ReportHandler is the push-style listener surface Synth consumes.
// Implementers may embed NoOpReportHandler to satisfy only the methods
// they care about.
type ReportHandler interface {
	OnLCDChange(text string)
	OnMIDIMessageLED(on bool)
	OnMIDIQueueOverflow()
	OnControlROMLoaded(version string)
	OnPCMROMLoaded(version string)
	OnPartialStateChange(partialIndex int, state int)
	OnSysexChecksumInvalid()
	OnSysexAddressOutOfRange()
}

// NoOpReportHandler implements ReportHandler with every method a no-op.
type NoOpReportHandler struct{}

func (NoOpReportHandler) OnLCDChange(string)             {}
func (NoOpReportHandler) OnMIDIMessageLED(bool)          {}
func (NoOpReportHandler) OnMIDIQueueOverflow()           {}
func (NoOpReportHandler) OnControlROMLoaded(string)      {}
func (NoOpReportHandler) OnPCMROMLoaded(string)          {}
func (NoOpReportHandler) OnPartialStateChange(int, int)  {}
func (NoOpReportHandler) OnSysexChecksumInvalid()        {}
func (NoOpReportHandler) OnSysexAddressOutOfRange()      {}
