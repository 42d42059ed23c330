package db

import (
	"context"
	"log"
	"strconv"

	"github.com/bots-empire/adnet-bot/model"
)

const emptyLevelField = "empty"

// Dialog level per user, kept in redis the same way the rest of the
// hierarchical data is.

func RdbSetUser(bot *model.GlobalBot, userID int64, level string) {
	userIDStr := strconv.FormatInt(userID, 10)
	_, err := bot.Rdb.Set(context.Background(), userIDStr, level, 0).Result()
	if err != nil {
		log.Println(err.Error())
	}
}

func GetLevel(bot *model.GlobalBot, userID int64) string {
	userIDStr := strconv.FormatInt(userID, 10)
	have, err := bot.Rdb.Get(context.Background(), userIDStr).Result()
	if err != nil {
		return emptyLevelField
	}

	return have
}

func RdbSetAdminMsgID(bot *model.GlobalBot, userID int64, msgID int) {
	adminMsgID := "admin_msg_id:" + strconv.FormatInt(userID, 10)
	_, err := bot.Rdb.Set(context.Background(), adminMsgID, strconv.Itoa(msgID), 0).Result()
	if err != nil {
		log.Println(err.Error())
	}
}

func RdbGetAdminMsgID(bot *model.GlobalBot, userID int64) int {
	adminMsgID := "admin_msg_id:" + strconv.FormatInt(userID, 10)
	result, err := bot.Rdb.Get(context.Background(), adminMsgID).Result()
	if err != nil {
		return 0
	}

	msgID, _ := strconv.Atoi(result)
	return msgID
}

func DeleteOldAdminMsg(bot *model.GlobalBot, userID int64) {
	adminMsgID := "admin_msg_id:" + strconv.FormatInt(userID, 10)
	_, err := bot.Rdb.Del(context.Background(), adminMsgID).Result()
	if err != nil {
		log.Println(err.Error())
	}
}
