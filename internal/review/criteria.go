package review

// BiomedicalCriteria is the default criteria set a manuscript is evaluated
// against. Callers may substitute their own slice; the orchestrator treats
// criteria as opaque prompt content.
func BiomedicalCriteria() []string {
	return []string{
		"Scientific rigor: Are the methods appropriate and well-executed?",
		"Novelty: Does this work represent a significant advance over existing literature?",
		"Significance: Will this work have an impact on the field?",
		"Data quality: Are the data convincing and properly analyzed?",
		"Reproducibility: Are sufficient details provided to reproduce the experiments?",
		"Claims vs. evidence: Are all claims supported by the presented data?",
		"Presentation: Is the manuscript clearly written and well-organized?",
		"Figures and tables: Are they clear, informative, and properly labeled?",
		"Ethics: Are there any ethical concerns with the research?",
	}
}
