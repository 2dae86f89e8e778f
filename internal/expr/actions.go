package expr

// argRule describes how the arguments of an action are checked.
type argRule int

const (
	argsNone     argRule = iota // no arguments
	argsTyped                   // first argument must be one of actionSpec.arg
	argsAny                     // first argument of any type
	argsSameType                // first argument must match the operand type
	argsLiterals                // literal parameters only (sizes, durations, patterns)
)

// actionSpec is the signature of a chain action.
type actionSpec struct {
	// input lists the accepted operand types; empty means any.
	input []Type
	// arg lists the accepted types of the first argument for argsTyped.
	arg  []Type
	rule argRule
	// minArgs and maxArgs bound the argument count.
	minArgs, maxArgs int
	// result is the resolved type; TypeUnknown means "same as the operand".
	result Type
	// unique marks actions whose argument is an approximate distinct count input.
	unique bool

	infix string
	prec  int
}

var (
	anyNumber = []Type{TypeNumber}
	anyString = []Type{TypeString, TypeSetString}
	dataset   = []Type{TypeDataset}
)

// actions is the closed catalog of supported chain actions.
var actions = map[string]actionSpec{
	// Aggregates over $main.
	"count":         {input: dataset, rule: argsNone, result: TypeNumber},
	"sum":           {input: dataset, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber},
	"min":           {input: dataset, arg: []Type{TypeNumber, TypeTime}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber},
	"max":           {input: dataset, arg: []Type{TypeNumber, TypeTime}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber},
	"average":       {input: dataset, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber},
	"quantile":      {input: dataset, arg: anyNumber, rule: argsTyped, minArgs: 2, maxArgs: 2, result: TypeNumber},
	"countDistinct": {input: dataset, rule: argsAny, minArgs: 1, maxArgs: 1, result: TypeNumber, unique: true},
	"filter":        {input: dataset, arg: []Type{TypeBoolean}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeDataset},

	// Bucketing and value transforms.
	"numberBucket": {input: []Type{TypeNumber, TypeNumberRange}, rule: argsLiterals, minArgs: 1, maxArgs: 2, result: TypeNumberRange},
	"timeBucket":   {input: []Type{TypeTime, TypeTimeRange}, rule: argsLiterals, minArgs: 1, maxArgs: 2, result: TypeTimeRange},
	"timeFloor":    {input: []Type{TypeTime}, rule: argsLiterals, minArgs: 1, maxArgs: 2, result: TypeTime},
	"timePart":     {input: []Type{TypeTime}, rule: argsLiterals, minArgs: 1, maxArgs: 2, result: TypeNumber},
	"substr":       {input: anyString, rule: argsLiterals, minArgs: 2, maxArgs: 2, result: TypeString},
	"extract":      {input: anyString, rule: argsLiterals, minArgs: 1, maxArgs: 1, result: TypeString},
	"lookup":       {input: anyString, rule: argsLiterals, minArgs: 1, maxArgs: 1, result: TypeString},
	"contains":     {input: anyString, rule: argsLiterals, minArgs: 1, maxArgs: 2, result: TypeBoolean},
	"match":        {input: anyString, rule: argsLiterals, minArgs: 1, maxArgs: 1, result: TypeBoolean},
	"fallback":     {rule: argsSameType, minArgs: 1, maxArgs: 1},
	"not":          {input: []Type{TypeBoolean}, rule: argsNone, result: TypeBoolean},
	"absolute":     {input: anyNumber, rule: argsNone, result: TypeNumber},

	// Infix operators.
	"or":                 {input: []Type{TypeBoolean}, arg: []Type{TypeBoolean}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "or", prec: 1},
	"and":                {input: []Type{TypeBoolean}, arg: []Type{TypeBoolean}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "and", prec: 2},
	"is":                 {rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "==", prec: 3},
	"isnt":               {rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "!=", prec: 3},
	"lessThan":           {input: []Type{TypeNumber, TypeTime}, rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "<", prec: 3},
	"lessThanOrEqual":    {input: []Type{TypeNumber, TypeTime}, rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: "<=", prec: 3},
	"greaterThan":        {input: []Type{TypeNumber, TypeTime}, rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: ">", prec: 3},
	"greaterThanOrEqual": {input: []Type{TypeNumber, TypeTime}, rule: argsSameType, minArgs: 1, maxArgs: 1, result: TypeBoolean, infix: ">=", prec: 3},
	"concat":             {input: []Type{TypeString}, arg: []Type{TypeString}, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeString, infix: "++", prec: 4},
	"add":                {input: anyNumber, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber, infix: "+", prec: 5},
	"subtract":           {input: anyNumber, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber, infix: "-", prec: 5},
	"multiply":           {input: anyNumber, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber, infix: "*", prec: 6},
	"divide":             {input: anyNumber, arg: anyNumber, rule: argsTyped, minArgs: 1, maxArgs: 1, result: TypeNumber, infix: "/", prec: 6},
}

// infixActions maps operator tokens back to action names.
var infixActions = func() map[string]string {
	m := make(map[string]string)
	for name, act := range actions {
		if act.infix != "" {
			m[act.infix] = name
		}
	}

	return m
}()

func lookupAction(name string) (actionSpec, bool) {
	act, ok := actions[name]
	return act, ok
}

// IsAggregate reports whether action is one of the dataset aggregates.
func IsAggregate(action string) bool {
	act, ok := actions[action]
	return ok && len(act.input) == 1 && act.input[0] == TypeDataset && act.result == TypeNumber
}

func (s actionSpec) accepts(allowed []Type, t Type) bool {
	if len(allowed) == 0 {
		return true
	}

	for _, a := range allowed {
		if a == t {
			return true
		}
	}

	return false
}
