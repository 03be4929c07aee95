// 手动导入题库脚本
//
// 从 JSON 文件批量导入题库题目，用于首次部署或课程初始化。
// JSON 格式为 model.Question 数组，选项内嵌在 options 字段中。
//
// 用法: go run scripts/seed_bank.go <course_id> <questions.json>

package main

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"edu_assess_backend/internal/config"
	"edu_assess_backend/internal/model"
	"edu_assess_backend/pkg/database"
	"edu_assess_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatal("用法: go run scripts/seed_bank.go <course_id> <questions.json>")
	}

	courseID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil || courseID == 0 {
		log.Fatalf("课程ID不合法: %s", os.Args[1])
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	raw, err := os.ReadFile(os.Args[2])
	if err != nil {
		log.Fatalf("无法读取题目文件: %v", err)
	}

	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		log.Fatalf("解析题目文件失败: %v", err)
	}

	imported := 0
	for i := range questions {
		q := &questions[i]
		q.ID = 0
		q.AssessmentID = nil // 题库题目不挂测评
		q.CourseID = uint(courseID)
		if q.Points <= 0 {
			q.Points = 1
		}
		if q.Difficulty == "" {
			q.Difficulty = model.DifficultyMedium
		}
		if err := db.Create(q).Error; err != nil {
			log.Printf("第 %d 题导入失败: %v", i+1, err)
			continue
		}
		imported++
	}

	log.Printf("导入完成: %d/%d", imported, len(questions))
}
