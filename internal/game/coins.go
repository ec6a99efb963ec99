package game

import "regexp"

type Coin struct {
	Symbol string
	Hints  []string
}

// Coins is the fixed set a round target is drawn from. A hint never names
// its own coin.
var Coins = []Coin{
	{
		Symbol: "DOGE",
		Hints: []string{
			"I am the original meme, born from a Shiba's smile",
			"Elon's tweets make me wag my tail",
			"Much wow, such coin, very crypto",
		},
	},
	{
		Symbol: "PEPE",
		Hints: []string{
			"Born from the rarest of images, I bring joy to the web",
			"Green is my color, chaos is my game",
			"From imageboards to blockchain, I am the face of resistance",
		},
	},
	{
		Symbol: "SHIB",
		Hints: []string{
			"I followed in the pawsteps of the original",
			"They call me the DOGE killer",
			"My army grows stronger with each passing day",
		},
	},
	{
		Symbol: "BONK",
		Hints: []string{
			"I landed on the fastest chain as a gift for the builders",
			"My name is the sound of a gentle blow to the head",
			"A dog with a bat guards my Solana home",
		},
	},
	{
		Symbol: "WOJAK",
		Hints: []string{
			"I am the bald face of every feeling you ever had",
			"I bought the top and sold the bottom, and drew myself crying",
			"Doomer, bloomer, coomer: all of them are me",
		},
	},
	{
		Symbol: "FLOKI",
		Hints: []string{
			"A billionaire named his puppy, and I was born from the name",
			"I wear a Viking helmet and sail for Valhalla",
			"The people's crypto, a pup of Norse legend",
		},
	},
}

func coinBySymbol(symbol string) (Coin, bool) {
	for _, c := range Coins {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return Coin{}, false
}

// symbolPatterns match each coin's symbol as a whole word, any case.
var symbolPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(Coins))
	for _, c := range Coins {
		m[c.Symbol] = compileSymbolPattern(c.Symbol)
	}
	return m
}()

func compileSymbolPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(symbol) + `\b`)
}

func symbolPattern(symbol string) *regexp.Regexp {
	if re, ok := symbolPatterns[symbol]; ok {
		return re
	}
	return compileSymbolPattern(symbol)
}
