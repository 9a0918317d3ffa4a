package buildpipeline

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Emit delivers evt to sink if there is one.
func Emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
