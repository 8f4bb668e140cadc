package cli

import "ecolearn-challenge-service/internal/domain"

// sampleQuestions is the built-in catalog used by the in-memory mode and the seed command.
func sampleQuestions() []domain.Question {
	q := func(id, category string, difficulty domain.Difficulty, prompt, answer string, options ...string) domain.Question {
		return domain.Question{ID: id, Category: category, Difficulty: difficulty, Prompt: prompt, Options: options, Answer: answer}
	}
	return []domain.Question{
		q("1", "Climate", domain.DifficultyEasy, "Which gas is the main driver of human-caused global warming?", "Carbon dioxide",
			"Oxygen", "Carbon dioxide", "Nitrogen", "Helium"),
		q("2", "Recycling", domain.DifficultyEasy, "Which of these items can usually go in the glass recycling bin?", "Jam jar",
			"Mirror", "Light bulb", "Jam jar", "Ceramic mug"),
		q("3", "Energy", domain.DifficultyEasy, "Which of these is a renewable energy source?", "Wind",
			"Coal", "Natural gas", "Wind", "Diesel"),
		q("4", "Water", domain.DifficultyEasy, "Roughly how much of Earth's water is fresh water?", "About 3%",
			"About 3%", "About 25%", "About 50%", "About 70%"),
		q("5", "Biodiversity", domain.DifficultyEasy, "Which insect is a key pollinator of many food crops?", "Bee",
			"Mosquito", "Bee", "Termite", "Flea"),
		q("6", "Climate", domain.DifficultyMedium, "What does the greenhouse effect describe?", "Gases trapping heat in the atmosphere",
			"Plants growing faster indoors", "Gases trapping heat in the atmosphere", "Ozone blocking all sunlight", "Oceans reflecting heat"),
		q("7", "Recycling", domain.DifficultyMedium, "What does the 'R' in the waste hierarchy that comes first stand for?", "Reduce",
			"Recycle", "Reuse", "Reduce", "Recover"),
		q("8", "Energy", domain.DifficultyMedium, "Which household appliance typically uses the most electricity?", "Heating and cooling system",
			"Phone charger", "Heating and cooling system", "LED lamp", "Laptop"),
		q("9", "Water", domain.DifficultyMedium, "Which practice saves the most water in agriculture?", "Drip irrigation",
			"Flood irrigation", "Drip irrigation", "Sprinklers at noon", "Over-watering"),
		q("10", "Biodiversity", domain.DifficultyMedium, "What is the main cause of biodiversity loss worldwide?", "Habitat destruction",
			"Volcanoes", "Habitat destruction", "Meteor strikes", "Solar flares"),
		q("11", "Climate", domain.DifficultyHard, "Which international agreement set the goal of limiting warming to well below 2°C?", "Paris Agreement",
			"Kyoto Protocol", "Montreal Protocol", "Paris Agreement", "Basel Convention"),
		q("12", "Energy", domain.DifficultyHard, "What is the approximate efficiency of a typical commercial solar panel?", "15-22%",
			"5-8%", "15-22%", "45-50%", "80-90%"),
		q("13", "Recycling", domain.DifficultyHard, "Why is contaminated plastic often not recycled?", "Residue lowers the quality of recycled material",
			"It is too light", "Residue lowers the quality of recycled material", "It is illegal", "It melts at room temperature"),
		q("14", "Water", domain.DifficultyHard, "What is 'virtual water'?", "Water used to produce goods",
			"Water in clouds", "Water used to produce goods", "Desalinated water", "Groundwater reserves"),
		q("15", "Biodiversity", domain.DifficultyHard, "What is a keystone species?", "A species with a disproportionate effect on its ecosystem",
			"The largest animal in a habitat", "A species with a disproportionate effect on its ecosystem", "An invasive plant", "A domesticated animal"),
	}
}
