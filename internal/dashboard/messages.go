package dashboard

// StepProgressMsg is sent once per successfully-processed plan position,
// carrying the same fields a pipeline.Observer receives.
type StepProgressMsg struct {
	PlanIndex int
	PlanLen   int
	Name      string
	Overall   float64
}

// RunCompleteMsg is sent when the driving pipeline.Run call returns.
type RunCompleteMsg struct {
	Err error
}
