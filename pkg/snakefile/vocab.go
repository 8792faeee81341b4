package snakefile

import "github.com/vito/smkfmt/pkg/smkfmt"

// bodyKind is how the lines under a keyword are read.
type bodyKind int

const (
	// paramBody holds parameter values.
	paramBody bodyKind = iota
	// ruleBody holds rule keywords.
	ruleBody
	// moduleBody holds module keywords.
	moduleBody
	// pythonBody holds plain code.
	pythonBody
)

type keyword struct {
	body  bodyKind
	kind  smkfmt.ParamKind
	named bool
}

var (
	list         = keyword{body: paramBody, kind: smkfmt.ParamList}
	single       = keyword{body: paramBody, kind: smkfmt.SingleParam}
	inlineSingle = keyword{body: paramBody, kind: smkfmt.InlineSingleParam}
	python       = keyword{body: pythonBody}
)

var topLevelKeywords = map[string]keyword{
	"rule":       {body: ruleBody, named: true},
	"checkpoint": {body: ruleBody, named: true},
	"module":     {body: moduleBody, named: true},

	"onstart":   python,
	"onsuccess": python,
	"onerror":   python,

	"include":       single,
	"workdir":       single,
	"configfile":    single,
	"pepfile":       single,
	"pepschema":     single,
	"report":        single,
	"container":     single,
	"containerized": single,
	"singularity":   single,
	"conda":         single,

	"ruleorder": inlineSingle,

	"localrules":           list,
	"wildcard_constraints": list,
	"envvars":              list,
}

var ruleKeywords = map[string]keyword{
	"input":                list,
	"output":               list,
	"params":               list,
	"log":                  list,
	"resources":            list,
	"envmodules":           list,
	"wildcard_constraints": list,

	"message":         single,
	"benchmark":       single,
	"conda":           single,
	"container":       single,
	"singularity":     single,
	"containerized":   single,
	"shadow":          single,
	"group":           single,
	"cache":           single,
	"shell":           single,
	"script":          single,
	"notebook":        single,
	"wrapper":         single,
	"cwl":             single,
	"template_engine": single,

	"name":           inlineSingle,
	"threads":        inlineSingle,
	"priority":       inlineSingle,
	"retries":        inlineSingle,
	"handover":       inlineSingle,
	"default_target": inlineSingle,
	"localrule":      inlineSingle,

	"run": python,
}

var moduleKeywords = map[string]keyword{
	"snakefile":       single,
	"meta_wrapper":    single,
	"config":          single,
	"skip_validation": single,
	"replace_prefix":  single,
	"prefix":          single,
}

// vocabulary returns the keywords valid inside a section's body.
func vocabulary(body bodyKind) map[string]keyword {
	if body == moduleBody {
		return moduleKeywords
	}
	return ruleKeywords
}
