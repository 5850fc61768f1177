package words

// Entry is a single practice word with its English translation.
type Entry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

// vocabulary is the fixed practice list: 2-letter words first, then 3-letter
// words, alphabetical within each group.
var vocabulary = []Entry{
	{Word: "ba", Translation: "three / father"},
	{Word: "bà", Translation: "grandmother"},
	{Word: "bị", Translation: "to suffer / passive marker"},
	{Word: "bò", Translation: "cow"},
	{Word: "bờ", Translation: "shore / edge"},
	{Word: "cá", Translation: "fish"},
	{Word: "cò", Translation: "heron"},
	{Word: "có", Translation: "to have / yes"},
	{Word: "cô", Translation: "aunt / miss"},
	{Word: "da", Translation: "skin"},
	{Word: "dê", Translation: "goat"},
	{Word: "đá", Translation: "stone / ice"},
	{Word: "đi", Translation: "to go"},
	{Word: "đó", Translation: "that"},
	{Word: "ếch", Translation: "frog"},
	{Word: "gà", Translation: "chicken"},
	{Word: "gấu", Translation: "bear"},
	{Word: "hà", Translation: "river"},
	{Word: "hó", Translation: "to shout"},
	{Word: "kê", Translation: "to prop up"},
	{Word: "kỳ", Translation: "strange / term"},
	{Word: "lá", Translation: "leaf"},
	{Word: "lò", Translation: "oven / stove"},
	{Word: "lý", Translation: "reason"},
	{Word: "má", Translation: "mother / cheek"},
	{Word: "mà", Translation: "but / that"},
	{Word: "mẹ", Translation: "mother"},
	{Word: "mù", Translation: "blind"},
	{Word: "na", Translation: "custard apple"},
	{Word: "nó", Translation: "he / she / it"},
	{Word: "ô", Translation: "square / umbrella"},
	{Word: "ơi", Translation: "hey / oh"},
	{Word: "rể", Translation: "son-in-law"},
	{Word: "rồi", Translation: "already / then"},
	{Word: "sao", Translation: "star / why"},
	{Word: "tai", Translation: "ear"},
	{Word: "tay", Translation: "hand / arm"},
	{Word: "thì", Translation: "then / so"},
	{Word: "tôi", Translation: "I / me"},
	{Word: "tô", Translation: "bowl"},
	{Word: "tủ", Translation: "cabinet"},
	{Word: "và", Translation: "and"},
	{Word: "vì", Translation: "because"},
	{Word: "voi", Translation: "elephant"},
	{Word: "vở", Translation: "notebook"},
	{Word: "xem", Translation: "to watch / see"},
	{Word: "xin", Translation: "please / to ask"},
	{Word: "xuê", Translation: "slanted"},

	{Word: "ăn", Translation: "to eat"},
	{Word: "bạn", Translation: "friend"},
	{Word: "bảo", Translation: "to tell / to say"},
	{Word: "bây", Translation: "now / this"},
	{Word: "béo", Translation: "fat"},
	{Word: "biết", Translation: "to know"},
	{Word: "bớt", Translation: "to reduce"},
	{Word: "buồn", Translation: "sad"},
	{Word: "cao", Translation: "tall / high"},
	{Word: "chó", Translation: "dog"},
	{Word: "chị", Translation: "older sister"},
	{Word: "đau", Translation: "pain / to hurt"},
	{Word: "đây", Translation: "here"},
	{Word: "đêm", Translation: "night"},
	{Word: "đến", Translation: "to arrive / to come"},
	{Word: "đói", Translation: "hungry"},
	{Word: "gần", Translation: "near"},
	{Word: "giá", Translation: "price"},
	{Word: "hay", Translation: "good / or"},
	{Word: "học", Translation: "to study / to learn"},
	{Word: "hỏi", Translation: "to ask"},
	{Word: "khó", Translation: "difficult"},
	{Word: "làm", Translation: "to do / to make"},
	{Word: "lớn", Translation: "big / large"},
	{Word: "mới", Translation: "new"},
	{Word: "một", Translation: "one"},
	{Word: "nào", Translation: "which / any"},
	{Word: "này", Translation: "this"},
	{Word: "nhà", Translation: "house / home"},
	{Word: "nhỏ", Translation: "small"},
	{Word: "như", Translation: "like / as"},
	{Word: "nói", Translation: "to speak / to say"},
	{Word: "phải", Translation: "must / right"},
	{Word: "sớm", Translation: "early"},
	{Word: "tên", Translation: "name"},
	{Word: "tốt", Translation: "good"},
	{Word: "trà", Translation: "tea"},
	{Word: "trái", Translation: "fruit / left"},
	{Word: "trẻ", Translation: "young"},
	{Word: "văn", Translation: "literature"},
	{Word: "vui", Translation: "happy / fun"},
	{Word: "xanh", Translation: "green / blue"},
	{Word: "xấu", Translation: "ugly / bad"},
}

// All returns the full ordered vocabulary. The returned slice is a copy, so
// callers cannot disturb the session order.
func All() []Entry {
	out := make([]Entry, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Count returns the number of practice words.
func Count() int {
	return len(vocabulary)
}

// ByIndex returns the word at the given session position.
func ByIndex(i int) (Entry, bool) {
	if i < 0 || i >= len(vocabulary) {
		return Entry{}, false
	}
	return vocabulary[i], true
}

// Find looks up an entry by its exact word form.
func Find(word string) (Entry, bool) {
	for _, e := range vocabulary {
		if e.Word == word {
			return e, true
		}
	}
	return Entry{}, false
}
