package bot

// User-facing copy lives in one place; everything renders as Telegram HTML.

const welcomeText = "🎉 <b>Добро пожаловать в MomoTMR бота!</b>\n\n" +
	"🚀 <b>Доступные функции:</b>\n" +
	"• Рандомный факт — получи интересный факт\n" +
	"• ChatGPT — общение с ИИ\n" +
	"• Диалог с личностью — говори с известными людьми\n" +
	"• Квиз — проверь свои знания\n" +
	"• Переводчик на разные языки\n" +
	"• Голосовой чат\n\n" +
	"Выберите функцию из меню ниже:"

const unknownCommandText = "Извините, я не знаю такой команды. Наберите /start, чтобы открыть меню."

const chatCaption = "🤖 <b>ChatGPT Интерфейс</b>\n\n" +
	"Напишите любой вопрос или сообщение, и я передам его ChatGPT!\n\n" +
	"💡 <b>Примеры вопросов:</b>\n" +
	"• Объясни квантовую физику простыми словами\n" +
	"• Напиши короткий рассказ про кота\n" +
	"• Как приготовить пасту карбонара?\n" +
	"• Переведи фразу на английский"

const voiceCaption = "🎤 <b>Голосовой чат с ChatGPT</b>\n\n" +
	"📱 Отправьте голосовое сообщение, и я отвечу голосом!\n\n" +
	"💡 <b>Как это работает:</b>\n" +
	"1. Отправьте голосовое сообщение\n" +
	"2. Я распознаю вашу речь\n" +
	"3. Отправлю текст в ChatGPT\n" +
	"4. Получу ответ и озвучу его\n\n" +
	"🗣️ Говорите чётко и не слишком быстро для лучшего распознавания."

const personaIntro = "👥 <b>Диалог с известной личностью</b>\n\n" +
	"Выберите, с кем хотите пообщаться:"

const translateIntro = "🌍 <b>Переводчик</b>\n\n" +
	"Выберите язык для перевода:\n\n" +
	"Я могу переводить с русского на выбранный язык и обратно!"

const quizIntro = "🧠 <b>Квиз — проверь свои знания!</b>\n\n" +
	"Выберите тему для квиза:\n\n" +
	"Каждый вопрос имеет 4 варианта ответа!"

const (
	processingText     = "🤔 Обрабатываю ваш запрос... ⏳"
	factGeneratingText = "🎲 Генерирую интересный факт... ⏳"
	quizGeneratingText = "🤔 Генерирую вопрос... ⏳"
)

const (
	gatewayErrorText     = "😔 Извините, произошла ошибка при обращении к ChatGPT. Попробуйте позже!"
	factErrorText        = "🤔 К сожалению, не удалось получить факт в данный момент. Попробуйте позже!"
	quizParseErrorText   = "❌ Ошибка генерации вопроса. Попробуйте ещё раз."
	quizAnswerPromptText = "❓ Пожалуйста, ответьте буквой A, B, C или D"
	notRecognizedText    = "Не удалось распознать голос. Попробуйте говорить чётче."
	speechServiceErrText = "Ошибка сервиса распознавания. Попробуйте позже."
)

// System prompts for the LLM gateway.
const (
	factSystemPrompt = "Ты помощник, который рассказывает интересные и познавательные факты. Отвечай на русском языке."
	factUserPrompt   = "Расскажи интересный случайный факт из любой области знаний. Факт должен быть познавательным, удивительным и не слишком длинным (максимум 3-4 предложения)."
	chatSystemPrompt = "Ты полезный помощник. Отвечай на русском языке, будь дружелюбным и информативным. Если не знаешь ответ, честно об этом скажи."
	quizUserPrompt   = "Создай новый вопрос"
)
