package generation

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
)

// Schema is the output contract sent with a structured request. Adapters translate it
// into their SDK representation.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// Order lists property names in the order the upstream should emit them.
	Order    []string
	Items    *Schema
	Required []string
}

func str(desc string) *Schema     { return &Schema{Type: TypeString, Description: desc} }
func num(desc string) *Schema     { return &Schema{Type: TypeNumber, Description: desc} }
func integer(desc string) *Schema { return &Schema{Type: TypeInteger, Description: desc} }

func object(desc string, names []string, props ...*Schema) *Schema {
	s := &Schema{Type: TypeObject, Description: desc, Properties: make(map[string]*Schema, len(names)), Order: names, Required: names}
	for i, name := range names {
		s.Properties[name] = props[i]
	}
	return s
}

func array(desc string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: items}
}

// WorkoutPlanSchema describes domain.WorkoutPlan.
func WorkoutPlanSchema() *Schema {
	exercise := object("One exercise.",
		[]string{"name", "sets", "reps", "rest"},
		str("The name of the exercise."),
		str(`The number of sets (e.g., "3").`),
		str(`The number of repetitions (e.g., "10-12").`),
		str(`The rest time between sets (e.g., "60s").`),
	)
	day := object("One day of the weekly schedule.",
		[]string{"day", "focus", "exercises"},
		integer("The day number of the workout plan, 1 to 7."),
		str(`The main focus of the day (e.g., "Full Body Strength", "Rest & Recovery").`),
		array("Exercises for the day. Empty for rest days.", exercise),
	)
	return object("A seven day workout plan.",
		[]string{"planTitle", "weeklySchedule"},
		str("A catchy title for the entire workout plan."),
		array("Exactly seven days, one entry per day of the week.", day),
	)
}

// DietPlanSchema describes domain.DietPlan.
func DietPlanSchema() *Schema {
	meal := object("One meal.",
		[]string{"name", "description", "calories"},
		str(`The name of the meal (e.g., "Scrambled Eggs with Spinach").`),
		str("A brief description of the meal and its ingredients."),
		num("Estimated number of calories for the meal."),
	)
	summary := object("Totals for the day.",
		[]string{"totalCalories", "notes"},
		num("Total estimated calories for the day."),
		str("General notes or tips for the day."),
	)
	day := object("One day of the diet plan.",
		[]string{"day", "title", "meals", "dailySummary"},
		integer("The day number of the diet plan, 1 to 7."),
		str(`A title for the day (e.g., "High-Protein Focus Day").`),
		array("The meals for the day.", meal),
		summary,
	)
	return object("A seven day diet plan.",
		[]string{"planTitle", "dailyPlans"},
		str("A catchy title for the entire diet plan."),
		array("Exactly seven daily diet plans.", day),
	)
}

// TipsSchema describes the tips envelope.
func TipsSchema() *Schema {
	tip := object("One tip.",
		[]string{"topic", "tip", "advice"},
		str("The topic of the tip."),
		str("A motivational tip related to the given topic."),
		str("Lifestyle advice related to the given topic."),
	)
	return object("Motivational tips.",
		[]string{"tips"},
		array("One entry per requested topic, in request order.", tip),
	)
}
