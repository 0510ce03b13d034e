package generation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TemplateService generates exercises from built-in templates. It backs the
// API when no generation endpoint is configured, so a development
// deployment works without the upstream service.
type TemplateService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateService creates a template-backed generator.
func NewTemplateService() *TemplateService {
	return &TemplateService{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type promptTemplate struct {
	title    string
	body     string
	elements map[string][]string
}

var promptTemplates = map[string][]promptTemplate{
	"Fantasy": {{
		title: "The Last Dragon's Secret",
		body:  "In a world where dragons were thought extinct, {character} discovers {discovery} hidden in {location}. As {conflict} threatens the realm, they must {challenge} before {deadline}.",
		elements: map[string][]string{
			"character": {"a young apprentice mage", "an exiled knight", "a street thief with unusual talents"},
			"discovery": {"a dragon egg", "an ancient prophecy", "a map to the dragon sanctuary"},
			"location":  {"the royal library's forbidden section", "an abandoned tower", "beneath the city sewers"},
			"conflict":  {"a dark sorcerer's army", "a plague of shadows", "civil war"},
			"challenge": {"master forbidden magic", "unite warring kingdoms", "awaken the sleeping dragon"},
			"deadline":  {"the blood moon rises", "winter's first snow", "the king's coronation"},
		},
	}},
	"Science Fiction": {{
		title: "Colony Ship Paradox",
		body:  "The generation ship {ship} has been traveling for {duration}, but {character} discovers {revelation}. With {resource} running low and {threat} approaching, they must decide whether to {choice}.",
		elements: map[string][]string{
			"ship":       {"Horizon's Hope", "New Eden", "Stellar Ark"},
			"duration":   {"300 years", "50 generations", "longer than recorded history"},
			"character":  {"the ship's AI maintenance tech", "a historian studying old Earth", "the youngest council member"},
			"revelation": {"they've been traveling in circles", "Earth still exists", "the ship is actually a prison"},
			"resource":   {"oxygen", "genetic diversity", "hope"},
			"threat":     {"an alien armada", "system-wide cascade failure", "a mutiny"},
			"choice":     {"wake the frozen founders", "change course to an unknown planet", "reveal the truth to everyone"},
		},
	}},
	"Mystery": {{
		title: "The Vanishing Gallery",
		body:  "{character} arrives at {location} to investigate {mystery}. The only clue is {clue}, but {complication} makes everyone a suspect. The truth involves {twist}.",
		elements: map[string][]string{
			"character":    {"a retired detective", "an insurance investigator", "an art student"},
			"location":     {"a private island museum", "an underground auction house", "a restored Victorian mansion"},
			"mystery":      {"the disappearance of priceless paintings", "a murder during a locked-room auction", "forged masterpieces appearing worldwide"},
			"clue":         {"a half-burned photograph", "a coded message in the victim's notebook", "paint that shouldn't exist yet"},
			"complication": {"everyone has an alibi", "the security footage has been edited", "the victim is still alive"},
			"twist":        {"time travel", "identical twins nobody knew about", "the detective is the criminal"},
		},
	}},
	"Horror": {{
		title: "The Inheritance",
		body:  "{character} inherits {inheritance} from {relative}, but discovers {horror} lurking within. As {event} approaches, they realize {revelation} and must {action} to survive.",
		elements: map[string][]string{
			"character":   {"a struggling artist", "a medical student", "a single parent"},
			"inheritance": {"a Victorian mansion", "an antique shop", "a storage unit full of artifacts"},
			"relative":    {"an uncle they never knew existed", "their recently deceased grandmother", "a distant cousin"},
			"horror":      {"the previous owners never left", "a portal to somewhere else", "a curse that transfers to the new owner"},
			"event":       {"the anniversary of a tragedy", "a lunar eclipse", "their first night alone"},
			"revelation":  {"they were chosen for a reason", "their family has kept this secret for generations", "escaping makes it worse"},
			"action":      {"perform an ancient ritual", "burn everything", "make a terrible sacrifice"},
		},
	}},
	"Romance": {{
		title: "Second Chances",
		body:  "{character1} and {character2} meet again after {period} at {location}. Despite {obstacle}, they discover {connection}, but {conflict} threatens to {consequence}.",
		elements: map[string][]string{
			"character1":  {"a successful CEO", "a small-town teacher", "a traveling musician"},
			"character2":  {"their college sweetheart", "their former rival", "their best friend's sibling"},
			"period":      {"ten years", "a lifetime", "one unforgettable summer"},
			"location":    {"a destination wedding", "their hometown reunion", "an unexpected flight delay"},
			"obstacle":    {"they're both engaged to others", "a bitter misunderstanding", "completely different lives now"},
			"connection":  {"they still finish each other's sentences", "a shared dream they never forgot", "letters never sent"},
			"conflict":    {"a job opportunity abroad", "family disapproval", "a secret from the past"},
			"consequence": {"separate them forever", "change everything", "break other hearts"},
		},
	}},
}

var defaultTemplate = promptTemplate{
	title: "The Unexpected Journey",
	body:  "Your protagonist discovers {discovery} that changes everything they believed about {belief}. They must {action} before {deadline}.",
	elements: map[string][]string{
		"discovery": {"a hidden letter", "a secret door", "an old photograph"},
		"belief":    {"their family history", "their own identity", "the nature of reality"},
		"action":    {"uncover the truth", "make an impossible choice", "confront their fears"},
		"deadline":  {"it's too late", "someone else finds out", "the opportunity disappears"},
	},
}

var genreTips = map[string]string{
	"Fantasy":            "Build a consistent magic system with clear rules and limitations.",
	"Science Fiction":    "Ground your technology in real scientific concepts, even if extrapolated.",
	"Mystery":            "Plant clues fairly throughout the story - readers should be able to solve it.",
	"Horror":             "Build tension through atmosphere and pacing, not just jump scares.",
	"Romance":            "Develop both characters fully - they should be interesting apart and together.",
	"Thriller":           "Keep the pacing tight and end chapters with hooks.",
	"Historical Fiction": "Research the period thoroughly but don't let facts overwhelm the story.",
	"Literary Fiction":   "Focus on character development and thematic depth.",
	"Young Adult":        "Address serious themes while maintaining an authentic teen voice.",
	"Crime":              "Make your detective's process logical and methodical.",
	"Adventure":          "Balance action sequences with character moments.",
	"Dystopian":          "Create a believable path from our world to yours.",
}

var difficultyLevels = []struct {
	WordCount  int
	Difficulty string
}{
	{250, "Very Easy"},
	{500, "Easy"},
	{750, "Medium"},
	{1000, "Hard"},
}

func (s *TemplateService) GeneratePrompt(_ context.Context, p PromptParams) (*Prompt, error) {
	var candidates []promptTemplate
	for _, genre := range p.Genres {
		candidates = append(candidates, promptTemplates[genre]...)
	}
	if len(candidates) == 0 {
		candidates = []promptTemplate{defaultTemplate}
	}

	tmpl := candidates[s.intn(len(candidates))]
	content := tmpl.body
	for key, options := range tmpl.elements {
		content = strings.ReplaceAll(content, "{"+key+"}", options[s.intn(len(options))])
	}

	level := difficultyLevels[s.intn(len(difficultyLevels))]
	return &Prompt{
		ID:         uuid.New().String(),
		Title:      tmpl.title,
		Content:    content,
		Genres:     p.Genres,
		Difficulty: level.Difficulty,
		WordCount:  level.WordCount,
		Tips:       s.tips(p.Genres),
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (s *TemplateService) WritingFeedback(_ context.Context, p WritingParams) (*Feedback, error) {
	words := len(strings.Fields(p.UserWriting))
	text := fmt.Sprintf(
		"### Feedback\nYou wrote %d words against a target of %d.\n\n#### Strengths\n- You completed the exercise, which is the hardest part.\n\n#### Suggestions\n- Read your opening paragraph aloud and cut anything you stumble over.\n- Look for places where you told the reader something you could show instead.",
		words, p.WordCount)
	return &Feedback{Feedback: text}, nil
}

func (s *TemplateService) DrawingFeedback(_ context.Context, p DrawingParams) (*Feedback, error) {
	skills := "your chosen skills"
	if len(p.Skills) > 0 {
		skills = strings.Join(p.Skills, ", ")
	}
	text := fmt.Sprintf(
		"### Feedback\nThanks for submitting your drawing for the exercise.\n\n#### Focus areas\n- Keep practicing %s with short daily studies.\n- Compare your proportions against the reference before adding detail.",
		skills)
	return &Feedback{Feedback: text}, nil
}

func (s *TemplateService) SoundDesign(_ context.Context, p SoundDesignParams) (*Prompt, error) {
	genre := "Ambient"
	if len(p.Genres) > 0 {
		genre = p.Genres[s.intn(len(p.Genres))]
	}
	level := difficultyLevels[s.intn(len(difficultyLevels))]
	return &Prompt{
		ID:         uuid.New().String(),
		Title:      fmt.Sprintf("%s Texture Study", genre),
		Content:    fmt.Sprintf("Design a %s soundscape built from three layers: a sustained bed, a rhythmic element, and a single foreground event. Record or synthesize each layer separately, then balance them into one scene.", strings.ToLower(genre)),
		Genres:     p.Genres,
		Difficulty: level.Difficulty,
		WordCount:  0,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (s *TemplateService) ChordProgression(_ context.Context, p ChordParams) (*Prompt, error) {
	key := p.Key
	if key == "" {
		keys := []string{"C major", "G major", "A minor", "E minor", "D major"}
		key = keys[s.intn(len(keys))]
	}
	level := difficultyLevels[s.intn(len(difficultyLevels))]
	return &Prompt{
		ID:         uuid.New().String(),
		Title:      fmt.Sprintf("%s Progression in %s", p.Genre, key),
		Content:    fmt.Sprintf("Write an eight-bar progression in %s that fits a %s feel. Start from the tonic, visit at least one borrowed chord, and resolve somewhere unexpected in bar seven.", key, strings.ToLower(p.Genre)),
		Difficulty: level.Difficulty,
		WordCount:  0,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// tips returns up to three tips: genre-specific ones first, then general
// advice.
func (s *TemplateService) tips(genres []string) []string {
	var tips []string
	for _, g := range genres {
		if tip, ok := genreTips[g]; ok {
			tips = append(tips, tip)
		}
	}
	tips = append(tips,
		"Start with a strong opening line that immediately engages the reader.",
		"Show character growth through actions and decisions, not just description.")
	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

func (s *TemplateService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
