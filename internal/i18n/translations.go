package i18n

// translations 语言包
var translations = map[string]map[string]string{
	LangZhCN: {
		"success":               "成功",
		"internal_server_error": "服务器内部错误",
		"invalid_params":        "参数错误",
		"unauthorized":          "未授权",
		"forbidden":             "禁止访问",
		"not_found":             "资源未找到",
		"too_many_requests":     "请求过于频繁",
		"service_unavailable":   "服务不可用",

		"file_not_found":        "文件未找到",
		"file_upload_failed":    "文件上传失败",
		"file_delete_failed":    "文件删除失败",
		"file_read_failed":      "文件读取失败",
		"file_size_too_large":   "文件大小超限",
		"file_type_not_allowed": "文件类型不允许",
		"file_name_invalid":     "文件名无效",

		"storage_config_not_found":       "存储配置未找到",
		"storage_config_invalid":         "存储配置无效",
		"storage_connection_failed":      "存储连接失败",
		"storage_upload_failed":          "对象上传失败",
		"storage_download_failed":        "对象下载失败",
		"storage_delete_failed":          "对象删除失败",
		"storage_list_failed":            "对象列表获取失败",
		"storage_config_in_use":          "激活中的存储配置不能删除或禁用",
		"storage_provider_not_supported": "存储提供商不支持",

		"database_connection":   "数据库连接错误",
		"database_query":        "数据库查询错误",
		"database_insert":       "数据库插入错误",
		"database_update":       "数据库更新错误",
		"database_delete":       "数据库删除错误",
		"database_transaction":  "数据库事务错误",
		"record_not_found":      "记录未找到",
		"record_already_exists": "记录已存在",

		"auth_required":   "请先登录",
		"invalid_token":   "令牌无效或已过期",
		"admin_required":  "需要管理员权限",
		"invalid_role":    "角色无效，只能是 admin、user 或 guest",
		"profile_invalid": "用户资料无效",

		"no_files":                   "未提供文件",
		"merge_needs_two":            "合并至少需要两个PDF文件",
		"invalid_file_type":          "文件类型无效",
		"invalid_page_range":         "页码范围无效",
		"invalid_rotation":           "旋转角度只能是90、180或270度",
		"password_required":          "密码不能为空",
		"current_password_required":  "移除保护需要提供当前密码",
		"incorrect_password":         "密码错误，请检查后重试",
		"not_password_protected":     "该PDF未设置密码保护",
		"already_password_protected": "该PDF已设置密码保护",
		"invalid_protect_mode":       "保护模式无效",
		"invalid_margin_negative":    "页边距不能为负数",
		"invalid_margin_too_large":   "页边距超出页面尺寸",
		"invalid_layout_option":      "版式选项无效",
		"no_worksheets":              "Excel文件中没有工作表",
		"no_sheets_selected":         "请至少选择一个工作表",
		"worksheet_not_found":        "工作表不存在",
		"conversion_unavailable":     "该转换暂不可用，需要服务端文档渲染支持",
		"pdf_processing_failed":      "PDF处理失败",
		"image_processing_failed":    "图片处理失败",
		"split_mode_invalid":         "拆分模式只能是 range 或 per-page",

		"adsense_config_invalid": "广告配置无效",
		"metrics_invalid":        "广告收益数据无效",
		"date_range_invalid":     "日期范围无效",

		"file_uploaded":            "文件上传成功",
		"file_deleted":             "文件删除成功",
		"profile_saved":            "用户资料已保存",
		"role_assigned":            "角色分配成功",
		"adsense_updated":          "广告配置已更新",
		"metrics_recorded":         "广告收益已记录",
		"storage_config_created":   "存储配置创建成功",
		"storage_config_updated":   "存储配置更新成功",
		"storage_config_deleted":   "存储配置删除成功",
		"storage_config_activated": "存储配置已激活",
		"storage_config_tested":    "存储连接测试成功",
		"storage_config_toggled":   "存储配置状态已更新",

		"unknown_error": "未知错误",
	},
	LangEnUS: {
		"success":               "Success",
		"internal_server_error": "Internal Server Error",
		"invalid_params":        "Invalid Parameters",
		"unauthorized":          "Unauthorized",
		"forbidden":             "Forbidden",
		"not_found":             "Resource Not Found",
		"too_many_requests":     "Too Many Requests",
		"service_unavailable":   "Service Unavailable",

		"file_not_found":        "File Not Found",
		"file_upload_failed":    "File Upload Failed",
		"file_delete_failed":    "File Delete Failed",
		"file_read_failed":      "File Read Failed",
		"file_size_too_large":   "File Size Too Large",
		"file_type_not_allowed": "File Type Not Allowed",
		"file_name_invalid":     "Invalid File Name",

		"storage_config_not_found":       "Storage Config Not Found",
		"storage_config_invalid":         "Storage Config Invalid",
		"storage_connection_failed":      "Storage Connection Failed",
		"storage_upload_failed":          "Object Upload Failed",
		"storage_download_failed":        "Object Download Failed",
		"storage_delete_failed":          "Object Delete Failed",
		"storage_list_failed":            "Object Listing Failed",
		"storage_config_in_use":          "The active storage config cannot be deleted or disabled",
		"storage_provider_not_supported": "Storage Provider Not Supported",

		"database_connection":   "Database Connection Error",
		"database_query":        "Database Query Error",
		"database_insert":       "Database Insert Error",
		"database_update":       "Database Update Error",
		"database_delete":       "Database Delete Error",
		"database_transaction":  "Database Transaction Error",
		"record_not_found":      "Record Not Found",
		"record_already_exists": "Record Already Exists",

		"auth_required":   "Please log in first",
		"invalid_token":   "Invalid or expired token",
		"admin_required":  "Administrator privileges required",
		"invalid_role":    "Invalid role, must be admin, user or guest",
		"profile_invalid": "Invalid user profile",

		"no_files":                   "No files provided",
		"merge_needs_two":            "At least two PDF files are required for merging",
		"invalid_file_type":          "Invalid file type",
		"invalid_page_range":         "Invalid page range",
		"invalid_rotation":           "Rotation angle must be 90, 180, or 270 degrees",
		"password_required":          "Password is required",
		"current_password_required":  "Current password is required to remove protection",
		"incorrect_password":         "Incorrect password. Please check your password and try again.",
		"not_password_protected":     "This PDF is not password-protected.",
		"already_password_protected": "This PDF is already password-protected.",
		"invalid_protect_mode":       "Invalid protection mode",
		"invalid_margin_negative":    "Margin cannot be negative",
		"invalid_margin_too_large":   "Margin is too large for the selected page size",
		"invalid_layout_option":      "Invalid layout option",
		"no_worksheets":              "No worksheets found in the Excel file",
		"no_sheets_selected":         "Please select at least one worksheet",
		"worksheet_not_found":        "Worksheet not found",
		"conversion_unavailable":     "This conversion is not yet available. This feature requires server-side document rendering.",
		"pdf_processing_failed":      "Failed to process PDF",
		"image_processing_failed":    "Failed to process image",
		"split_mode_invalid":         "Split mode must be range or per-page",

		"adsense_config_invalid": "Invalid AdSense configuration",
		"metrics_invalid":        "Invalid ad revenue metrics",
		"date_range_invalid":     "Invalid date range",

		"file_uploaded":            "File uploaded successfully",
		"file_deleted":             "File deleted successfully",
		"profile_saved":            "Profile saved",
		"role_assigned":            "Role assigned",
		"adsense_updated":          "AdSense configuration updated",
		"metrics_recorded":         "Ad metrics recorded",
		"storage_config_created":   "Storage config created",
		"storage_config_updated":   "Storage config updated",
		"storage_config_deleted":   "Storage config deleted",
		"storage_config_activated": "Storage config activated",
		"storage_config_tested":    "Storage connection test succeeded",
		"storage_config_toggled":   "Storage config status updated",

		"unknown_error": "Unknown Error",
	},
	LangEsES: {
		"success":               "Éxito",
		"internal_server_error": "Error interno del servidor",
		"invalid_params":        "Parámetros no válidos",
		"unauthorized":          "No autorizado",
		"forbidden":             "Acceso prohibido",
		"not_found":             "Recurso no encontrado",
		"too_many_requests":     "Demasiadas solicitudes",
		"service_unavailable":   "Servicio no disponible",

		"file_not_found":        "Archivo no encontrado",
		"file_upload_failed":    "Error al subir el archivo",
		"file_delete_failed":    "Error al eliminar el archivo",
		"file_read_failed":      "Error al leer el archivo",
		"file_size_too_large":   "El archivo es demasiado grande",
		"file_type_not_allowed": "Tipo de archivo no permitido",
		"file_name_invalid":     "Nombre de archivo no válido",

		"storage_config_not_found":       "Configuración de almacenamiento no encontrada",
		"storage_config_invalid":         "Configuración de almacenamiento no válida",
		"storage_connection_failed":      "Error de conexión con el almacenamiento",
		"storage_upload_failed":          "Error al subir el objeto",
		"storage_download_failed":        "Error al descargar el objeto",
		"storage_delete_failed":          "Error al eliminar el objeto",
		"storage_list_failed":            "Error al listar los objetos",
		"storage_config_in_use":          "La configuración activa no se puede eliminar ni desactivar",
		"storage_provider_not_supported": "Proveedor de almacenamiento no compatible",

		"database_connection":   "Error de conexión a la base de datos",
		"database_query":        "Error de consulta a la base de datos",
		"database_insert":       "Error de inserción en la base de datos",
		"database_update":       "Error de actualización en la base de datos",
		"database_delete":       "Error de eliminación en la base de datos",
		"database_transaction":  "Error de transacción en la base de datos",
		"record_not_found":      "Registro no encontrado",
		"record_already_exists": "El registro ya existe",

		"auth_required":   "Inicie sesión primero",
		"invalid_token":   "Token no válido o caducado",
		"admin_required":  "Se requieren privilegios de administrador",
		"invalid_role":    "Rol no válido, debe ser admin, user o guest",
		"profile_invalid": "Perfil de usuario no válido",

		"no_files":                   "No se proporcionaron archivos",
		"merge_needs_two":            "Se requieren al menos dos archivos PDF para combinar",
		"invalid_file_type":          "Tipo de archivo no válido",
		"invalid_page_range":         "Rango de páginas no válido",
		"invalid_rotation":           "El ángulo de rotación debe ser 90, 180 o 270 grados",
		"password_required":          "La contraseña es obligatoria",
		"current_password_required":  "Se requiere la contraseña actual para quitar la protección",
		"incorrect_password":         "Contraseña incorrecta. Compruébela e inténtelo de nuevo.",
		"not_password_protected":     "Este PDF no está protegido con contraseña.",
		"already_password_protected": "Este PDF ya está protegido con contraseña.",
		"invalid_protect_mode":       "Modo de protección no válido",
		"invalid_margin_negative":    "El margen no puede ser negativo",
		"invalid_margin_too_large":   "El margen es demasiado grande para el tamaño de página",
		"invalid_layout_option":      "Opción de diseño no válida",
		"no_worksheets":              "No se encontraron hojas en el archivo de Excel",
		"no_sheets_selected":         "Seleccione al menos una hoja",
		"worksheet_not_found":        "Hoja no encontrada",
		"conversion_unavailable":     "Esta conversión aún no está disponible. Requiere renderizado de documentos en el servidor.",
		"pdf_processing_failed":      "Error al procesar el PDF",
		"image_processing_failed":    "Error al procesar la imagen",
		"split_mode_invalid":         "El modo de división debe ser range o per-page",

		"adsense_config_invalid": "Configuración de AdSense no válida",
		"metrics_invalid":        "Métricas de ingresos publicitarios no válidas",
		"date_range_invalid":     "Rango de fechas no válido",

		"file_uploaded":            "Archivo subido correctamente",
		"file_deleted":             "Archivo eliminado correctamente",
		"profile_saved":            "Perfil guardado",
		"role_assigned":            "Rol asignado",
		"adsense_updated":          "Configuración de AdSense actualizada",
		"metrics_recorded":         "Métricas publicitarias registradas",
		"storage_config_created":   "Configuración de almacenamiento creada",
		"storage_config_updated":   "Configuración de almacenamiento actualizada",
		"storage_config_deleted":   "Configuración de almacenamiento eliminada",
		"storage_config_activated": "Configuración de almacenamiento activada",
		"storage_config_tested":    "Prueba de conexión correcta",
		"storage_config_toggled":   "Estado de la configuración actualizado",

		"unknown_error": "Error desconocido",
	},
}
