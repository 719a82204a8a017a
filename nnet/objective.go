package nnet

// ObjectiveKind is the mathematical form of the training objective attached
// to an output node
type ObjectiveKind int

const (
	// ObjectiveLinear is output · supervision. It is used for
	// cross-entropy-style classification: the network ends in a log-softmax
	// layer, so the output rows are already normalized log-likelihoods and
	// the dot product with the posterior supervision is the log-probability
	// of the reference labels.
	ObjectiveLinear ObjectiveKind = iota
	// ObjectiveQuadratic is -0.5 * ||output - supervision||², used for
	// regression-style continuous targets.
	ObjectiveQuadratic
)

func (k ObjectiveKind) String() string {
	switch k {
	case ObjectiveLinear:
		return "Linear"
	case ObjectiveQuadratic:
		return "Quadratic"
	default:
		return "Unknown"
	}
}
