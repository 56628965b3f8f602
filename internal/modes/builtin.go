package modes

// DefaultMode is used when nothing points at a more specific mode.
const DefaultMode = "mechanistic"

// Tool names provided by the built-in layer adapters.
const (
	toolParametric  = "parametric_memory"
	toolVisual      = "visual_describer"
	toolLiterature  = "search_literature"
	toolUniProt     = "uniprot_search"
	toolKEGG        = "kegg_query"
	toolOpenTargets = "opentargets_search"
	toolWebFetch    = "web_fetch"
)

// Builtin returns the biological reasoning modes shipped with bioreason.
func Builtin() []Definition {
	return []Definition{
		{
			ID:          "phylogenetic",
			Name:        "Phylogenetic",
			Description: "Analyzes evolutionary relationships, phylogenetic trees, and ancestral connections",
			Keywords: []string{
				"phylogeny", "phylogenetic", "evolution", "evolutionary", "tree", "clade", "ancestor",
				"ancestral", "divergence", "speciation", "homolog", "ortholog", "paralog", "sequence alignment",
				"molecular clock", "common ancestor", "branching", "monophyletic", "paraphyletic",
			},
			SystemPrompt: "You are a Phylogenetic Reasoning Expert. " +
				"Given the user's question and any provided sequence or species data, your task is to:\n" +
				"1. Gather homologous sequences or taxa relevant to the query.\n" +
				"2. Perform multiple sequence alignment or retrieve an existing alignment.\n" +
				"3. Construct or retrieve a phylogenetic tree.\n" +
				"4. Interpret branching order, clade support, and divergence times to answer why and how the trait or gene evolved.\n" +
				"5. Clearly explain which species share common ancestry and what that implies for the user's question.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature, toolUniProt, toolKEGG},
			},
		},
		{
			ID:          "teleonomic",
			Name:        "Teleonomic (Adaptive Function)",
			Description: "Examines adaptive functions, fitness advantages, and evolutionary purposes",
			Aliases:     []string{"adaptive"},
			Keywords: []string{
				"function", "adaptive", "adaptation", "fitness", "advantage", "benefit", "purpose",
				"survival", "reproduction", "natural selection", "selective pressure",
				"evolutionary advantage", "why evolved", "what for", "in order to", "functional significance",
			},
			SystemPrompt: "You are an Adaptive-Function (Teleonomic) Reasoning Expert. " +
				"Given the user's question and the trait or organism in question, your task is to:\n" +
				"1. Identify the biological feature and hypothesize its function in terms of fitness advantage.\n" +
				"2. Draw on known case studies or analogous adaptations to frame a plausible 'in-order-to' explanation.\n" +
				"3. Cite evidence (literature or databases) supporting that the trait enhances survival or reproduction.\n" +
				"4. Note any alternative hypotheses or trade-offs that might challenge the adaptive explanation.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature, toolWebFetch},
			},
		},
		{
			ID:          "tradeoff",
			Name:        "Trade-off",
			Description: "Studies competing biological traits, resource allocation, and optimization",
			Aliases:     []string{"trade-off"},
			Keywords: []string{
				"tradeoff", "trade-off", "cost", "benefit", "allocation", "resource", "constraint",
				"optimization", "balance", "competing", "conflict", "compromise", "energy budget",
				"life history", "pareto", "optimal",
			},
			SystemPrompt: "You are a Trade-off Reasoning Expert. " +
				"Given the user's question and any quantitative or qualitative data, your task is to:\n" +
				"1. Identify the two (or more) competing biological traits or functions.\n" +
				"2. Describe how resources (energy, time, materials) are allocated between them.\n" +
				"3. If data are available, quantify the relationship (e.g., correlation, cost-benefit curve).\n" +
				"4. Explain why an optimal intermediate balance exists, and discuss evolutionary or physiological implications.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature},
			},
		},
		{
			ID:          "mechanistic",
			Name:        "Mechanistic",
			Description: "Investigates molecular mechanisms, pathways, and step-by-step processes",
			Keywords: []string{
				"mechanism", "molecular", "pathway", "signaling", "cascade", "interaction", "binding",
				"enzyme", "protein", "gene expression", "regulation", "transcription", "translation",
				"how does", "step by step", "process", "causal chain", "biochemical",
			},
			SystemPrompt: "You are a Mechanistic Reasoning Expert. " +
				"Given the user's question and relevant molecular or cellular entities, your task is to:\n" +
				"1. Decompose the phenomenon into its component molecules, interactions, or steps.\n" +
				"2. Map out the causal chain (e.g., receptor → signal transduction → effector).\n" +
				"3. Describe each step in detail, citing known reactions, structures, or regulatory mechanisms.\n" +
				"4. Conclude by synthesizing how these steps produce the observed outcome.",
			Tools: ToolSet{
				A: []string{toolParametric},
				B: []string{toolVisual},
				C: []string{toolLiterature, toolUniProt, toolKEGG},
			},
		},
		{
			ID:          "systems",
			Name:        "Systems Biology",
			Description: "Analyzes biological networks, emergent properties, and system-level behaviors",
			Keywords: []string{
				"network", "system", "systems biology", "emergent", "feedback", "loop", "circuit",
				"module", "motif", "topology", "connectivity", "robustness", "dynamics", "oscillation",
				"bistability", "multi-scale", "integration",
			},
			SystemPrompt: "You are a Systems Biology Reasoning Expert. " +
				"Given the user's question and any network or multi-omic data, your task is to:\n" +
				"1. Identify the network components (genes, proteins, metabolites) and their interactions.\n" +
				"2. Determine which feedback loops or network motifs drive the emergent behavior.\n" +
				"3. If appropriate, simulate or qualitatively analyze dynamic behavior (e.g., oscillation, bistability).\n" +
				"4. Explain how the system-level properties arise from the interplay of parts.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolKEGG, toolOpenTargets, toolLiterature},
			},
		},
		{
			ID:          "probabilistic",
			Name:        "Probabilistic",
			Description: "Quantifies variability, uncertainty, and likelihoods in biological outcomes",
			Aliases:     []string{"stochastic"},
			Keywords: []string{
				"probability", "statistical", "stochastic", "random", "variability", "uncertainty",
				"distribution", "bayesian", "likelihood", "confidence", "variance", "noise",
				"population", "frequency", "risk", "chance",
			},
			SystemPrompt: "You are a Probabilistic Reasoning Expert. " +
				"Given the user's question and relevant statistical or population data, your task is to:\n" +
				"1. Identify sources of biological variability (e.g., mutation rates, stochastic gene expression).\n" +
				"2. Formulate a probabilistic model (e.g., Bayesian network, Markov process) as needed.\n" +
				"3. Calculate or retrieve probabilities, confidence intervals, or likelihoods relevant to the question.\n" +
				"4. Interpret these probabilities to inform decision-making or prediction, and discuss uncertainty.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature, toolOpenTargets},
			},
		},
		{
			ID:          "spatial",
			Name:        "Spatial",
			Description: "Explains how geometry, localization, and spatial organization shape biological function",
			Keywords: []string{
				"spatial", "structure", "localization", "location", "geometry", "diffusion", "gradient",
				"tissue architecture", "3d", "morphology", "compartment", "membrane", "image",
				"microscopy", "shape",
			},
			SystemPrompt: "You are a Spatial Reasoning Expert. " +
				"Given the user's question and any images, structures, or spatial patterns, your task is to:\n" +
				"1. Identify the relevant spatial scale (molecular, cellular, tissue, ecological).\n" +
				"2. Explain how geometry, localization, or diffusion shape the phenomenon.\n" +
				"3. If provided an image or 3D structure, describe key spatial features and their functional roles.\n" +
				"4. Relate spatial organization to the user's specific question.",
			Tools: ToolSet{
				A: []string{toolParametric},
				B: []string{toolVisual},
				C: []string{toolLiterature, toolUniProt},
			},
		},
		{
			ID:          "temporal",
			Name:        "Temporal",
			Description: "Studies time-dependent processes, dynamics, and temporal sequences",
			Keywords: []string{
				"time", "temporal", "dynamics", "kinetics", "rate", "timing", "sequence", "order",
				"phase", "cycle", "rhythm", "circadian", "oscillation", "delay", "duration",
				"time course", "chronology", "development over time",
			},
			SystemPrompt: "You are a Temporal Reasoning Expert. " +
				"Given the user's question and any time-series data or process descriptions, your task is to:\n" +
				"1. Identify the sequence of events, phases, or cycles involved.\n" +
				"2. Quantify or describe rates, delays, and durations.\n" +
				"3. If appropriate, model the dynamics (e.g., using ODEs or time-series analysis).\n" +
				"4. Explain how timing and order produce the observed behavior or phenotype.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature},
			},
		},
		{
			ID:          "homeostatic",
			Name:        "Homeostatic",
			Description: "Analyzes regulatory mechanisms, feedback control, and physiological stability",
			Keywords: []string{
				"homeostasis", "regulation", "control", "feedback", "setpoint", "maintain", "stability",
				"physiological", "sensor", "effector", "negative feedback", "positive feedback",
				"equilibrium", "steady state", "perturbation",
			},
			SystemPrompt: "You are a Homeostatic Reasoning Expert. " +
				"Given the user's question and any physiological variables, your task is to:\n" +
				"1. Identify the controlled variable and its setpoint or normal range.\n" +
				"2. Describe the sensors, control centers, and effectors that form the feedback loop.\n" +
				"3. Explain how negative (or positive) feedback maintains stability.\n" +
				"4. Discuss what happens when the loop fails or is perturbed.",
			Tools: ToolSet{
				A: []string{toolParametric},
				C: []string{toolLiterature, toolKEGG},
			},
		},
		{
			ID:          "ontogenetic",
			Name:        "Developmental (Ontogenetic)",
			Description: "Traces developmental sequences, cell fate decisions, and morphogenesis",
			Aliases:     []string{"developmental"},
			Keywords: []string{
				"development", "developmental", "embryo", "morphogenesis", "differentiation", "induction",
				"lineage", "fate", "specification", "determination", "organogenesis", "gastrulation",
				"neurulation", "segmentation", "axis formation", "gene regulatory network",
			},
			SystemPrompt: "You are a Developmental Biology Reasoning Expert. " +
				"Given the user's question and any gene-expression or lineage data, your task is to:\n" +
				"1. Trace the sequence of developmental events (induction, differentiation, morphogenesis).\n" +
				"2. Identify key regulatory genes or signals and their spatial-temporal expression.\n" +
				"3. Explain how cell-cell interactions and gradients drive tissue formation.\n" +
				"4. Relate these processes to the question (e.g., mutant phenotype, organogenesis).",
			Tools: ToolSet{
				A: []string{toolParametric},
				B: []string{toolVisual},
				C: []string{toolLiterature},
			},
		},
		{
			ID:          "comparative",
			Name:        "Comparative",
			Description: "Draws inferences across species, model organisms, and homologous systems",
			Keywords: []string{
				"compare", "comparison", "comparative", "across species", "model organism", "homologous",
				"analogous", "conserved", "divergent", "cross-species", "orthologous", "species differences",
			},
			SystemPrompt: "You are a Comparative Biology Reasoning Expert. " +
				"Given the user's question and any cross-species data, your task is to:\n" +
				"1. Identify relevant model organisms or systems analogous to the one under study.\n" +
				"2. Map homologous or analogous features (genes, structures, behaviors) between species.\n" +
				"3. Draw inferences or generate hypotheses by analogy, noting conserved versus divergent aspects.\n" +
				"4. Cite comparative studies that support or refine the analogy.",
			Tools: ToolSet{
				A: []string{toolParametric},
				B: []string{toolVisual},
				C: []string{toolLiterature, toolUniProt, toolWebFetch},
			},
		},
	}
}

// DefineBuiltin defines every built-in mode in r.
func DefineBuiltin(r *Registry) error {
	for _, def := range Builtin() {
		if err := r.Define(def.ID, def); err != nil {
			return err
		}
	}
	return nil
}
