package assets

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/bots-empire/adnet-bot/cfg"
)

const (
	languagePath   = "assets/language/en"
	adminPath      = "assets/admin/en"
	rewardsPath    = "assets/rewards"
	jsonFormatName = ".json"
)

var (
	messages      map[string]string
	adminMessages map[string]string
)

func UploadTexts() {
	messages = uploadTextFile(languagePath + jsonFormatName)
	adminMessages = uploadTextFile(adminPath + jsonFormatName)
}

func uploadTextFile(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read text file %s: %s\n", path, err.Error())
	}

	texts := make(map[string]string)
	if err = json.Unmarshal(data, &texts); err != nil {
		log.Fatalf("Failed to parse text file %s: %s\n", path, err.Error())
	}

	return texts
}

func LangText(key string, values ...interface{}) string {
	text := messages[key]
	if len(values) == 0 {
		return text
	}
	return fmt.Sprintf(text, values...)
}

func AdminText(key string, values ...interface{}) string {
	text := adminMessages[key]
	if len(values) == 0 {
		return text
	}
	return fmt.Sprintf(text, values...)
}

// UploadRewards layers the persisted admin overrides on top of the env
// defaults. The first run writes the defaults out so admins have a file to
// start from.
func UploadRewards(defaults cfg.Rewards) *cfg.Rewards {
	rewards := defaults

	data, err := os.ReadFile(rewardsPath + jsonFormatName)
	if err == nil {
		if err = json.Unmarshal(data, &rewards); err != nil {
			log.Fatalf("Failed to parse rewards file: %s\n", err.Error())
		}
	}

	SaveRewards(&rewards)
	return &rewards
}

func SaveRewards(rewards *cfg.Rewards) {
	data, err := json.MarshalIndent(rewards, "", "  ")
	if err != nil {
		panic(err)
	}

	if err = os.WriteFile(rewardsPath+jsonFormatName, data, 0600); err != nil {
		panic(err)
	}
}
